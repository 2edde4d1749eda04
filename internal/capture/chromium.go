// Package capture renders the agenda page to a PNG with headless Chromium.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"careplan/internal/convert"
	appLog "careplan/internal/log"
)

// Defaults suit a tablet in portrait orientation.
const (
	DefaultWidth         = 800
	DefaultHeight        = 1280
	DefaultTimeout       = 30 * time.Second
	DefaultReadySelector = `[data-ready="true"]`
)

// Options defines parameters for a snapshot of the /calendar page.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/calendar?days=3".
	URL string

	// OutputPath receives the PNG. Parent directories are created.
	OutputPath string

	// Width and Height are the viewport in pixels. Zero means the defaults.
	Width  int
	Height int

	// Timeout bounds the whole capture. Zero means DefaultTimeout.
	Timeout time.Duration

	// ReadySelector is waited for before the screenshot is taken.
	ReadySelector string

	// Username and Password are sent as HTTP Basic Auth when set.
	Username string
	Password string

	// Monochrome reduces the PNG to black and white for e-ink readers.
	Monochrome bool
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.ReadySelector == "" {
		o.ReadySelector = DefaultReadySelector
	}
	return nil
}

func (o *Options) tasks(png *[]byte) chromedp.Tasks {
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(o.Width), int64(o.Height)),
	}
	if o.Username != "" {
		token := base64.StdEncoding.EncodeToString([]byte(o.Username + ":" + o.Password))
		tasks = append(tasks,
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers{"Authorization": "Basic " + token}),
		)
	}
	return append(tasks,
		chromedp.Navigate(o.URL),
		chromedp.WaitVisible(o.ReadySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(png, 100),
	)
}

// CaptureCalendarPNG launches headless Chromium, loads opts.URL, waits for
// the page to mark itself ready and writes a full-page PNG.
func CaptureCalendarPNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	start := time.Now()
	var png []byte
	if err := chromedp.Run(ctx, opts.tasks(&png)); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	if opts.Monochrome {
		mono, err := convert.MonochromePNG(png, convert.DefaultThreshold)
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		png = mono
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	appLog.Info("calendar snapshot written",
		"path", opts.OutputPath,
		"bytes", len(png),
		"monochrome", opts.Monochrome,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
