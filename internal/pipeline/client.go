package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Options configures the engine client.
type Options struct {
	BaseURL      string
	HTTPClient   *http.Client
	Logger       zerolog.Logger
	AwaitTimeout time.Duration
	PollInterval time.Duration
	ClientID     string
}

// Client performs HTTP calls against the engine's queue API. The engine
// executes one configuration graph at a time, so SubmitAndAwait holds a
// weight-1 semaphore for the whole submit-and-wait critical section.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       zerolog.Logger
	awaitTimeout time.Duration
	pollInterval time.Duration
	clientID     string
	slot         *semaphore.Weighted
}

// ImageRef identifies an image previously uploaded into the engine's input
// store.
type ImageRef struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

// InputName is the value LoadImage-style nodes expect for this reference.
func (r ImageRef) InputName() string {
	if r.Subfolder == "" {
		return r.Name
	}
	return r.Subfolder + "/" + r.Name
}

// NewClient constructs a client with defaults applied.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("pipeline: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	awaitTimeout := opts.AwaitTimeout
	if awaitTimeout <= 0 {
		awaitTimeout = 300 * time.Second
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	clientID := opts.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}
	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       opts.Logger,
		awaitTimeout: awaitTimeout,
		pollInterval: pollInterval,
		clientID:     clientID,
		slot:         semaphore.NewWeighted(1),
	}, nil
}

// UploadImage stages a sketch in the engine's input store and returns the
// handle nodes use to reference it.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (ImageRef, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return ImageRef{}, fmt.Errorf("pipeline: build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return ImageRef{}, fmt.Errorf("pipeline: buffer upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return ImageRef{}, fmt.Errorf("pipeline: close upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/image", body)
	if err != nil {
		return ImageRef{}, fmt.Errorf("pipeline: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ImageRef{}, fmt.Errorf("pipeline: upload image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ImageRef{}, c.statusError("upload image", resp)
	}

	var ref ImageRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return ImageRef{}, fmt.Errorf("pipeline: decode upload response: %w", err)
	}
	if ref.Name == "" {
		return ImageRef{}, fmt.Errorf("pipeline: upload response missing image name")
	}
	return ref, nil
}

type queueRequest struct {
	Prompt   *Workflow `json:"prompt"`
	ClientID string    `json:"client_id"`
}

type queueResponse struct {
	PromptID string `json:"prompt_id"`
	Error    string `json:"error"`
}

type historyEntry struct {
	Status struct {
		Completed bool   `json:"completed"`
		StatusStr string `json:"status_str"`
	} `json:"status"`
	Outputs map[string]struct {
		Images []ImageRef `json:"images"`
	} `json:"outputs"`
}

// SubmitAndAwait queues the workflow, waits for the engine to finish, and
// returns the artifacts produced at the node titled outputStage, keyed by
// output filename. The wait is bounded by the configured await timeout.
func (c *Client) SubmitAndAwait(ctx context.Context, wf *Workflow, outputStage string) (map[string][]byte, error) {
	outputID, ok := wf.nodeIDByTitle(outputStage)
	if !ok {
		return nil, fmt.Errorf("pipeline: no output stage titled %q", outputStage)
	}

	if err := c.slot.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("pipeline: waiting for engine slot: %w", err)
	}
	defer c.slot.Release(1)

	ctx, cancel := context.WithTimeout(ctx, c.awaitTimeout)
	defer cancel()

	promptID, err := c.queue(ctx, wf)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("prompt_id", promptID).Msg("workflow queued")

	entry, err := c.awaitCompletion(ctx, promptID)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]byte)
	for _, image := range entry.Outputs[outputID].Images {
		data, err := c.fetchImage(ctx, image)
		if err != nil {
			return nil, err
		}
		results[image.Name] = data
	}
	return results, nil
}

func (c *Client) queue(ctx context.Context, wf *Workflow) (string, error) {
	payload, err := json.Marshal(queueRequest{Prompt: wf, ClientID: c.clientID})
	if err != nil {
		return "", fmt.Errorf("pipeline: encode queue request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prompt", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("pipeline: build queue request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pipeline: queue workflow: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", c.statusError("queue workflow", resp)
	}

	var queued queueResponse
	if err := json.NewDecoder(resp.Body).Decode(&queued); err != nil {
		return "", fmt.Errorf("pipeline: decode queue response: %w", err)
	}
	if queued.Error != "" {
		return "", fmt.Errorf("pipeline: engine rejected workflow: %s", queued.Error)
	}
	if queued.PromptID == "" {
		return "", fmt.Errorf("pipeline: queue response missing prompt id")
	}
	return queued.PromptID, nil
}

func (c *Client) awaitCompletion(ctx context.Context, promptID string) (*historyEntry, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		entry, err := c.history(ctx, promptID)
		if err != nil {
			return nil, err
		}
		if entry != nil && entry.Status.Completed {
			if entry.Status.StatusStr != "" && entry.Status.StatusStr != "success" {
				return nil, fmt.Errorf("pipeline: run %s finished with status %q", promptID, entry.Status.StatusStr)
			}
			return entry, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("pipeline: awaiting run %s: %w", promptID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) history(ctx context.Context, promptID string) (*historyEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+url.PathEscape(promptID), nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build history request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch history: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("fetch history", resp)
	}

	entries := make(map[string]*historyEntry)
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("pipeline: decode history response: %w", err)
	}
	return entries[promptID], nil
}

func (c *Client) fetchImage(ctx context.Context, ref ImageRef) ([]byte, error) {
	q := url.Values{}
	q.Set("filename", ref.Name)
	q.Set("subfolder", ref.Subfolder)
	q.Set("type", ref.Type)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/view?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build view request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch artifact %s: %w", ref.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("fetch artifact", resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read artifact %s: %w", ref.Name, err)
	}
	return data, nil
}

func (c *Client) statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("pipeline: %s: engine returned %d: %s", op, resp.StatusCode, msg)
}
