package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	_ = os.Setenv("TEST_VAR", "TEST_VAL")
	defer os.Unsetenv("TEST_VAR")
	actual := GetEnv("TEST_VAR", "OOPS")
	if actual != "TEST_VAL" {
		t.Errorf("start failed, expected %s, got %s", "TEST_VAL", actual)
	}

	require.Equal(t, "OOPS", GetEnv("TEST_VAR_MISSING", "OOPS"))
}

func TestGetEnvAsInt(t *testing.T) {
	_ = os.Setenv("TEST_VAR", "123")
	defer os.Unsetenv("TEST_VAR")
	actual := GetEnvAsInt("TEST_VAR", 321)
	if actual != 123 {
		t.Errorf("start failed, expected %d, got %d", 123, actual)
	}

	_ = os.Setenv("TEST_VAR", "abc")
	require.Equal(t, 321, GetEnvAsInt("TEST_VAR", 321))
}

func TestGetEnvAsBool(t *testing.T) {
	_ = os.Setenv("TEST_VAR", "true")
	defer os.Unsetenv("TEST_VAR")

	require.True(t, GetEnvAsBool("TEST_VAR", false))
	require.True(t, GetEnvAsBool("TEST_VAR_MISSING", true))
}

func TestGetEnvAsDuration(t *testing.T) {
	_ = os.Setenv("TEST_VAR", "90s")
	defer os.Unsetenv("TEST_VAR")

	require.Equal(t, 90*time.Second, GetEnvAsDuration("TEST_VAR", time.Second))

	_ = os.Setenv("TEST_VAR", "soon")
	require.Equal(t, time.Second, GetEnvAsDuration("TEST_VAR", time.Second))
}

func TestFileExists(t *testing.T) {
	f, err := ioutil.TempFile(os.TempDir(), "util_test")
	if err != nil {
		t.Error(err)
	}
	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	require.True(t, FileExists(f.Name()))
	require.False(t, FileExists(filepath.Join(os.TempDir(), "util_test_missing_file")))
}

func TestIsBlank(t *testing.T) {
	require.True(t, IsBlank(""))
	require.True(t, IsBlank("   "))
	require.False(t, IsBlank(" test  "))
	require.False(t, IsBlank("test"))
}

func TestContainsFold(t *testing.T) {
	require.True(t, ContainsFold("Financeiro", "fin"))
	require.True(t, ContainsFold("ana@EXAMPLE.com", "example"))
	require.True(t, ContainsFold("anything", ""))
	require.False(t, ContainsFold("Vendas", "rh"))
}

func TestSplitAndTrim(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, SplitAndTrim(" a, ,b ,"))
	require.Nil(t, SplitAndTrim(""))
}
