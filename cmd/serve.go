/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnames/gitmo/internal/iobrowse"
	"github.com/gnames/gitmo/internal/iodb"
	"github.com/gnames/gitmo/internal/ioweb"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout limits how long open requests may finish on exit.
const shutdownTimeout = 10 * time.Second

// getServeCmd returns the serve command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve web views of the dataset",
		Long: `Start a web server with read-only views of the database.

Pages:
  /, /countries       all countries
  /country/{iso}      a country and its detainees
  /detainee/{isn}     a detainee
  /longest            50 detainees held the longest
  /stats              latest arrival date and number of detainees

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  gitmo serve
  gitmo serve -p 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runServe(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	serveCmd.Flags().IntP("port", "p", 5000, "port to listen on")
	serveCmd.Flags().String("host", "", "interface to listen on, all if empty")

	return serveCmd
}

func runServe(cmd *cobra.Command) error {
	if serveOpts := serveFlags(cmd); len(serveOpts) > 0 {
		cfg.Update(serveOpts)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	op := iodb.NewOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return err
	}
	if !hasTables {
		return iodb.EmptyDatabaseError(iodb.Target(&cfg.Database))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv, err := ioweb.NewServer(iobrowse.New(op), addr)
	if err != nil {
		return err
	}

	gn.Info("Serving <em>%s</em> at <em>http://%s</em>",
		iodb.Target(&cfg.Database), displayAddr(cfg.Server.Host, cfg.Server.Port))

	return serve(ctx, srv, addr)
}

// serve runs the server until ctx is done, then shuts it down.
// addr is used for error reporting.
func serve(ctx context.Context, srv *ioweb.Server, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.Start()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return ioweb.ServerError(addr, err)
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down web server")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func displayAddr(host string, port int) string {
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%d", host, port)
}
