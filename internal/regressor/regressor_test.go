package regressor

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCurrentLayout(t *testing.T) {
	path := writeArtifact(t, `{"version":2,"criteria":{"C2_SELF_INTRO":{"slope":2.0,"intercept":0.5}}}`)
	s := New(path)

	require.True(t, s.Loaded())
	got, ok := s.Predict(3, "C2_SELF_INTRO")
	require.True(t, ok)
	assert.InDelta(t, 6.5, got, 1e-9)
}

func TestLoadLegacyLayout(t *testing.T) {
	// Artifacts from the older trainer use parallel coef/intercept maps.
	path := writeArtifact(t, `{"coef":{"C2_SELF_INTRO":2.0,"C1_OVERALL":1.5},"intercept":{"C2_SELF_INTRO":0.5}}`)
	s := New(path)

	require.True(t, s.Loaded())
	got, ok := s.Predict(3, "C2_SELF_INTRO")
	require.True(t, ok)
	assert.InDelta(t, 6.5, got, 1e-9)

	// Missing intercept defaults to zero.
	got, ok = s.Predict(2, "C1_OVERALL")
	require.True(t, ok)
	assert.InDelta(t, 3.0, got, 1e-9)
}

func TestMissingArtifactDisablesCalibration(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.json"))
	assert.False(t, s.Loaded())
	_, ok := s.Predict(3, "C2_SELF_INTRO")
	assert.False(t, ok)
}

func TestCorruptArtifactDisablesCalibration(t *testing.T) {
	for _, content := range []string{"not json", "{}", `{"criteria":{}}`} {
		s := New(writeArtifact(t, content))
		assert.False(t, s.Loaded(), "content %q", content)
	}
}

func TestUnknownModelID(t *testing.T) {
	s := New(writeArtifact(t, `{"criteria":{"C2_SELF_INTRO":{"slope":1,"intercept":0}}}`))
	_, ok := s.Predict(3, "C9_UNKNOWN")
	assert.False(t, ok)
}

func TestConcurrentFirstUse(t *testing.T) {
	s := New(writeArtifact(t, `{"criteria":{"C2_SELF_INTRO":{"slope":2,"intercept":0}}}`))

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, ok := s.Predict(3, "C2_SELF_INTRO")
			assert.True(t, ok)
			results[i] = got
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.InDelta(t, 6.0, got, 1e-9)
	}
}
