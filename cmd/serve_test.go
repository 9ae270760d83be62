package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/gnames/gitmo/internal/iobrowse"
	"github.com/gnames/gitmo/internal/ioweb"
	"github.com/gnames/gitmo/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetServeCmd_Flags verifies serve flags.
func TestGetServeCmd_Flags(t *testing.T) {
	cmd := getServeCmd()
	assert.Equal(t, "serve", cmd.Use)

	port := cmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "5000", port.DefValue)

	require.NoError(t, cmd.ParseFlags([]string{"-p", "8080", "--host", "127.0.0.1"}))
	c := config.New()
	c.Update(serveFlags(cmd))
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "127.0.0.1", c.Server.Host)
}

// TestServe_Shutdown verifies serve returns cleanly when its context
// is cancelled.
func TestServe_Shutdown(t *testing.T) {
	op := memoryOperator(t)
	addr := "127.0.0.1:0"
	srv, err := ioweb.NewServer(iobrowse.New(op), addr)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, addr) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestDisplayAddr(t *testing.T) {
	assert.Equal(t, "localhost:5000", displayAddr("", 5000))
	assert.Equal(t, "0.0.0.0:80", displayAddr("0.0.0.0", 80))
}
