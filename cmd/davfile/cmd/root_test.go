package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	_ "github.com/xxxsen/davfile/resource/file"
	_ "github.com/xxxsen/davfile/resource/mem"
)

func TestBackendsCmd(t *testing.T) {
	f := filepath.Join(t.TempDir(), "config.json")
	assert.NoError(t, os.WriteFile(f, []byte(`{"log_info":{"level":"error","console":true},"webdav":{"resource_class":"mem"}}`), 0644))
	root := NewRoot()
	buf := bytes.NewBuffer(nil)
	root.SetOut(buf)
	root.SetArgs([]string{"backends", "--config", f})
	assert.NoError(t, root.Execute())
	assert.Equal(t, "  file\n* mem\n", buf.String())
}

func TestInvalidConfig(t *testing.T) {
	root := NewRoot()
	root.SetArgs([]string{"backends", "-c", filepath.Join(t.TempDir(), "missing.json")})
	root.SilenceUsage = true
	root.SilenceErrors = true
	assert.Error(t, root.Execute())
}
