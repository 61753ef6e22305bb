package channels

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOutboxWrite(t *testing.T) {
	dir := t.TempDir()
	outbox, err := NewOutbox(dir, "Max", "max@solisa.ai")
	require.NoError(t, err)

	path, err := outbox.Write("Jane Doe", "jane@acme.com", "Coverage review", "Hello Jane")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	base := filepath.Base(path)
	assert.True(t, strings.HasSuffix(base, "-jane_at_acme.com.eml"), base)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "From: Max <max@solisa.ai>\n")
	assert.Contains(t, content, "To: Jane Doe <jane@acme.com>\n")
	assert.Contains(t, content, "Subject: Coverage review\n")

	// headers and body separated by exactly one blank line
	_, body, found := strings.Cut(content, "\n\n")
	require.True(t, found)
	assert.Equal(t, "Hello Jane\n", body)
}

func TestOutboxCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outbox")
	_, err := NewOutbox(dir, "Max", "max@solisa.ai")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConsoleEmailSend(t *testing.T) {
	dir := t.TempDir()
	outbox, err := NewOutbox(dir, "Max", "max@solisa.ai")
	require.NoError(t, err)

	c := NewConsoleEmail(outbox, zap.NewNop())
	receipt, err := c.Send(context.Background(), "Jane Doe", "jane@acme.com", "s", "b")
	require.NoError(t, err)

	assert.Equal(t, "dry_run", receipt.SID)
	assert.Equal(t, "queued", receipt.Status)
	assert.Equal(t, "jane@acme.com", receipt.To)
	assert.FileExists(t, receipt.Path)
}

func TestConsoleEmailCompose(t *testing.T) {
	dir := t.TempDir()
	outbox, err := NewOutbox(dir, "Max", "max@solisa.ai")
	require.NoError(t, err)

	c := NewConsoleEmail(outbox, zap.NewNop())
	path, err := c.Compose("Jane Doe", "jane@acme.com", "s", "b")
	require.NoError(t, err)
	assert.FileExists(t, path)
}
