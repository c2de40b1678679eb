package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"chitieu/internal/core"
	ports "chitieu/internal/sheets"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultSheetName = "Sheet1"
	defaultTimeout   = 15 * time.Second
	tokenURL         = "https://oauth2.googleapis.com/token"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	timeout       time.Duration
}

// Ensure interface conformance
var _ ports.RecordStore = (*Client)(nil)

// Options configures a Client. Exactly one credential source is used, in this
// order: CredentialsJSON, CredentialsFile, ServiceEmail+PrivateKey.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	ServiceEmail    string
	PrivateKey      string
	Timeout         time.Duration
}

// OptionsFromEnv reads client options from the environment.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_SERVICE_EMAIL + GOOGLE_PRIVATE_KEY.
// Optional: GOOGLE_SHEET_NAME (default "Sheet1"), STORE_TIMEOUT.
func OptionsFromEnv() Options {
	opts := Options{
		SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		SheetName:       strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME")),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
		ServiceEmail:    strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_EMAIL")),
		PrivateKey:      os.Getenv("GOOGLE_PRIVATE_KEY"),
	}
	if opts.CredentialsFile == "" {
		opts.CredentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if d, err := time.ParseDuration(os.Getenv("STORE_TIMEOUT")); err == nil {
		opts.Timeout = d
	}
	return opts
}

// NewFromEnv creates a Sheets client using environment variables.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, OptionsFromEnv())
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	clientOpts, err := credentialOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", sheetNameOrDefault(opts.SheetName))
	return newWithService(svc, opts), nil
}

func newWithService(svc *gsheet.Service, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetNameOrDefault(opts.SheetName),
		timeout:       timeout,
	}
}

// credentialOptions picks the credential source and returns the matching
// client options.
func credentialOptions(ctx context.Context, opts Options) ([]goption.ClientOption, error) {
	switch {
	case opts.CredentialsJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []goption.ClientOption{
			goption.WithCredentialsJSON([]byte(opts.CredentialsJSON)),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	case opts.CredentialsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", opts.CredentialsFile)
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return []goption.ClientOption{
			goption.WithCredentialsJSON(data),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	case opts.ServiceEmail != "" && opts.PrivateKey != "":
		slog.InfoContext(ctx, "Using service account email and private key", "email", opts.ServiceEmail)
		cfg := &jwt.Config{
			Email:      opts.ServiceEmail,
			PrivateKey: []byte(unescapePrivateKey(opts.PrivateKey)),
			Scopes:     []string{gsheet.SpreadsheetsScope},
			TokenURL:   tokenURL,
		}
		// Token requests and API calls share the pooled transport
		base := context.WithValue(context.Background(), oauth2.HTTPClient, newHTTPClientWithPooling())
		return []goption.ClientOption{goption.WithHTTPClient(cfg.Client(base))}, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_SERVICE_EMAIL and GOOGLE_PRIVATE_KEY)")
	}
}

// newHTTPClientWithPooling creates an HTTP client optimized for Google Sheets API
// with connection pooling, proper timeouts, and keep-alive settings
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Append adds one row at the end of the data range.
func (c *Client) Append(ctx context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return fmt.Errorf("%w: sheets service not initialized", core.ErrStoreUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	vr := &gsheet.ValueRange{Values: [][]any{toCells(r)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.dataRange(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: append to sheet %s: %w", core.ErrStoreUnavailable, c.sheetName, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	slog.DebugContext(ctx, "Record appended to sheet",
		"sheet", c.sheetName,
		"updated_range", updated,
		"sender_id", r.SenderID)
	return nil
}

// FetchAll reads every row of the data range. Numbers are requested
// unformatted so amounts do not depend on the sheet's locale.
func (c *Client) FetchAll(ctx context.Context) ([]ports.Row, error) {
	if c.svc == nil {
		return nil, fmt.Errorf("%w: sheets service not initialized", core.ErrStoreUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rng := c.dataRange()
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrStoreUnavailable, rng, err)
	}
	rows := make([]ports.Row, 0, len(resp.Values))
	for _, v := range resp.Values {
		rows = append(rows, toStrings(v))
	}
	return rows, nil
}

// EnsureHeader writes the column header into an empty sheet.
func (c *Client) EnsureHeader(ctx context.Context) error {
	if c.svc == nil {
		return fmt.Errorf("%w: sheets service not initialized", core.ErrStoreUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	headerRange := a1Range(c.sheetName, "A1:F1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", core.ErrStoreUnavailable, headerRange, err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: write header to %s: %w", core.ErrStoreUnavailable, headerRange, err)
	}
	slog.InfoContext(ctx, "Wrote header row", "sheet", c.sheetName)
	return nil
}

func (c *Client) dataRange() string {
	return a1Range(c.sheetName, "A:F")
}
