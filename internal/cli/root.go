package cli

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/classify-ui/internal/config"
	"github.com/Brownie44l1/classify-ui/internal/model"
)

type options struct {
	backendURL string
	timeout    time.Duration
}

func (o *options) client() *model.Client {
	return model.NewClient(o.backendURL, o.timeout)
}

// NewRootCmd builds the classify command tree with defaults taken from cfg.
func NewRootCmd(cfg config.Config) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "classify",
		Short:         "Upload images to the classification backend",
		Long:          "Terminal front-end that uploads an image to the classification backend and prints the predictions it returns.",
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.backendURL, "backend", cfg.BackendURL, "classification backend base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.RequestTimeout, "request timeout")

	root.AddCommand(newPredictCmd(opts), newHealthCmd(opts))
	return root
}

// renderedError is a failure the view has already shown to the user.
type renderedError struct {
	msg string
}

func (e *renderedError) Error() string {
	return e.msg
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd(config.Load()).Execute(); err != nil {
		var shown *renderedError
		if !errors.As(err, &shown) {
			log.Println(err)
		}
		os.Exit(1)
	}
}
