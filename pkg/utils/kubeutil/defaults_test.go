package kubeutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/intelcomp/taskwatch/pkg/utils/kubeutil"
)

func TestFindKubeconfig(t *testing.T) {
	t.Run("the first existing file in the search path wins over KUBECONFIG", func(t *testing.T) {
		dir := t.TempDir()
		fromEnv := filepath.Join(dir, "env-kubeconfig")
		fromPath := filepath.Join(dir, "path-kubeconfig")
		for _, p := range []string{fromEnv, fromPath} {
			if err := os.WriteFile(p, []byte("apiVersion: v1\n"), 0600); err != nil {
				t.Fatal(err)
			}
		}
		t.Setenv("KUBECONFIG", fromEnv)

		got := kubeutil.FindKubeconfig(filepath.Join(dir, "not-exist"), dir, fromPath)
		if got != fromPath {
			t.Errorf("kubeconfig: actual = %s, expected = %s", got, fromPath)
		}
	})

	t.Run("KUBECONFIG is used when search path has no files", func(t *testing.T) {
		dir := t.TempDir()
		fromEnv := filepath.Join(dir, "env-kubeconfig")
		if err := os.WriteFile(fromEnv, []byte("apiVersion: v1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("KUBECONFIG", fromEnv)

		got := kubeutil.FindKubeconfig(filepath.Join(dir, "not-exist"))
		if got != fromEnv {
			t.Errorf("kubeconfig: actual = %s, expected = %s", got, fromEnv)
		}
	})

	t.Run("nothing is found in empty world", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("HOME", dir)
		t.Setenv("KUBECONFIG", "")

		if got := kubeutil.FindKubeconfig(); got != "" {
			t.Errorf("kubeconfig: actual = %s, expected = (empty)", got)
		}
	})
}
