package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type createResp struct {
	PortfolioID int64  `json:"portfolio_id"`
	UploadToken string `json:"upload_token"`
}

type uploadResp struct {
	DocumentRef string `json:"document_ref"`
}

type portfolioResp struct {
	PortfolioID    int64          `json:"portfolio_id"`
	Status         string         `json:"status"`
	DocumentRef    string         `json:"document_ref,omitempty"`
	AIGrade        *float64       `json:"ai_grade,omitempty"`
	AIReviewReport map[string]any `json:"ai_review_report,omitempty"`
}

type gradeResp struct {
	PortfolioID    int64   `json:"portfolio_id"`
	AIGrade        float64 `json:"ai_grade"`
	AIReviewReport string  `json:"ai_review_report"`
}

const samplePortfolio = `Self-introduction:
I am a third-year student. This portfolio reflects on my clinical
attachment, a moral dilemma I faced on the ward, and a group activity
on breaking bad news. I discuss how these experiences shaped my
emotional intelligence and my plans for the coming year.
`

func main() {
	base := envOr("API_BASE_URL", "http://localhost:8000")
	token := envOr("API_TOKEN", "dev-secret-token")

	baseFlag := flag.String("base", base, "API base URL (e.g., http://localhost:8000)")
	tokenFlag := flag.String("token", token, "API token for admin endpoints")
	waitGrade := flag.Duration("wait-grade", 90*time.Second, "How long to poll for the grade after enqueue")
	syncGrade := flag.Bool("sync", false, "Also exercise the synchronous /grade endpoint with a local file")
	flag.Parse()

	httpc := &http.Client{Timeout: 12 * time.Second}

	// 1) Create portfolio
	var created createResp
	if err := postJSON(httpc, *baseFlag+"/portfolios", *tokenFlag, nil, &created); err != nil {
		fatalf("create portfolio: %v", err)
	}
	fmt.Printf("✅ Created portfolio: id=%d upload_token=%s\n", created.PortfolioID, created.UploadToken)

	// 2) Upload document (with upload token)
	var uploaded uploadResp
	url := fmt.Sprintf("%s/portfolios/%d/document?filename=portfolio.txt", *baseFlag, created.PortfolioID)
	if err := postRaw(httpc, url, created.UploadToken, []byte(samplePortfolio), &uploaded); err != nil {
		fatalf("upload document: %v", err)
	}
	fmt.Printf("✅ Uploaded document: ref=%s\n", uploaded.DocumentRef)

	// 3) Enqueue grading
	if err := postJSON(httpc, fmt.Sprintf("%s/portfolios/%d/grade", *baseFlag, created.PortfolioID), *tokenFlag, nil, &map[string]any{}); err != nil {
		fatalf("enqueue grade: %v", err)
	}
	fmt.Println("✅ Enqueued grading")

	// 4) Poll for the grade
	deadline := time.Now().Add(*waitGrade)
	var p portfolioResp
	for {
		if err := getJSON(httpc, fmt.Sprintf("%s/portfolios/%d", *baseFlag, created.PortfolioID), *tokenFlag, &p); err != nil {
			fatalf("get portfolio: %v", err)
		}
		if p.AIGrade != nil {
			fmt.Printf("✅ Graded: ai_grade=%.2f\nreport:\n%s\n", *p.AIGrade, compactJSON(p.AIReviewReport))
			break
		}
		if time.Now().After(deadline) {
			fmt.Printf("ℹ️  Grade not present yet. Current portfolio:\n%s\n", compactJSON(p))
			break
		}
		time.Sleep(5 * time.Second)
	}

	// 5) Optionally hit the synchronous endpoint with a local file
	if *syncGrade {
		path := filepath.Join(os.TempDir(), "smoke-portfolio.txt")
		if err := os.WriteFile(path, []byte(samplePortfolio), 0644); err != nil {
			fatalf("write temp portfolio: %v", err)
		}
		var graded gradeResp
		body := map[string]any{"portfolio_id": created.PortfolioID, "file_path": path}
		if err := postJSON(httpc, *baseFlag+"/grade", *tokenFlag, body, &graded); err != nil {
			fatalf("sync grade: %v", err)
		}
		fmt.Printf("✅ Sync grade: ai_grade=%.2f\n%s\n", graded.AIGrade, graded.AIReviewReport)
	}

	fmt.Printf("🎉 Smoke run OK. PortfolioID=%d\n", created.PortfolioID)
}

// --- helpers ---

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func postJSON(c *http.Client, url, bearer string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("POST %s -> %d: %s", url, res.StatusCode, string(b))
	}
	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	return nil
}

func postRaw(c *http.Client, url, uploadToken string, body []byte, out any) error {
	if uploadToken == "" {
		return errors.New("upload token required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+uploadToken)
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("POST %s -> %d: %s", url, res.StatusCode, string(b))
	}
	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	return nil
}

func getJSON(c *http.Client, url, bearer string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("GET %s -> %d: %s", url, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func compactJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func fatalf(format string, args ...any) {
	fmt.Printf("❌ "+format+"\n", args...)
	os.Exit(1)
}
