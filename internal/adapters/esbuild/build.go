// Package esbuild compiles and bundles scripts in-process with esbuild.
package esbuild

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/zerr"
)

// build runs one esbuild pass and reports its errors under sentinel.
// Cancelling ctx cancels the pass.
func build(ctx context.Context, opts api.BuildOptions, sentinel error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return failure(sentinel, ctxErr.Errors)
	}
	defer buildCtx.Dispose()

	stop := context.AfterFunc(ctx, buildCtx.Cancel)
	defer stop()

	result := buildCtx.Rebuild()
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return failure(sentinel, result.Errors)
	}
	return nil
}

// failure renders esbuild messages as "file:line:col: text" lines.
func failure(sentinel error, messages []api.Message) error {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, formatMessage(msg))
	}
	err := zerr.Wrap(sentinel, strings.Join(lines, "\n"))
	return zerr.With(err, "errors", len(messages))
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}
