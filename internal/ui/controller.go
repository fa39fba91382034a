package ui

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/Brownie44l1/classify-ui/internal/model"
)

// Predictor is the backend contract the controller depends on.
type Predictor interface {
	Predict(ctx context.Context, filename string, image io.Reader) (*model.PredictResponse, error)
}

// Controller owns the ViewState for one user and drives uploads against
// the backend.
//
// The loading flag does not serialize uploads: a second upload started while
// one is pending runs concurrently and the last one to finish wins.
type Controller struct {
	predictor Predictor

	mu    sync.Mutex
	state model.ViewState
}

// NewController returns an idle controller backed by predictor.
func NewController(predictor Predictor) *Controller {
	return &Controller{predictor: predictor}
}

// State returns a snapshot of the current view state.
func (c *Controller) State() model.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if c.state.Predictions != nil {
		s.Predictions = append([]model.Prediction(nil), c.state.Predictions...)
	}
	return s
}

// Start marks the view as loading and submits the image in the background.
// The returned channel is closed once the view state has settled.
func (c *Controller) Start(ctx context.Context, filename string, data []byte) <-chan struct{} {
	c.begin()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.run(ctx, filename, data)
	}()
	return done
}

// Upload runs one full upload cycle and returns the settled view state.
func (c *Controller) Upload(ctx context.Context, filename string, data []byte) model.ViewState {
	c.begin()
	c.run(ctx, filename, data)
	return c.State()
}

func (c *Controller) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Error = ""
	c.state.Predictions = nil
	c.state.IsLoading = true
}

func (c *Controller) run(ctx context.Context, filename string, data []byte) {
	defer c.finish()

	resp, err := c.predictor.Predict(ctx, filename, bytes.NewReader(data))
	if err != nil {
		c.fail(err)
		return
	}
	c.succeed(resp)
}

func (c *Controller) succeed(resp *model.PredictResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = model.ViewState{
		ImageURL:    resp.ProcessedImage,
		Predictions: resp.Predictions,
		IsLoading:   true,
	}
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = model.ViewState{
		Error:     err.Error(),
		IsLoading: true,
	}
}

func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.IsLoading = false
}
