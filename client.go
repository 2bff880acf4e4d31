package extend

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

const (
	// ProductionURL is the official production endpoint.
	ProductionURL = "https://apiv2.paywithextend.com/"
	// StageURL is the official staging endpoint.
	StageURL = "https://apiv2-stage.paywithextend.com/"

	// APIVersion is the media type pinning the API version.
	APIVersion = "application/vnd.paywithextend.v2021-03-12+json"

	modulePath = "github.com/paywithextend/extend-go"
)

// Client holds configuration needed to call the Extend API.
// Use [New] to create a new client. A Client is safe for concurrent use.
type Client struct {
	baseURL *url.URL

	apiKey     string
	authHeader string
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
	now        func() time.Time

	// VirtualCards groups the virtual card endpoints.
	VirtualCards *VirtualCardsService
	// Transactions groups the transaction endpoints.
	Transactions *TransactionsService
	// CreditCards groups the credit card endpoints.
	CreditCards *CreditCardsService
	// ReceiptAttachments groups the receipt upload endpoints.
	ReceiptAttachments *ReceiptAttachmentsService
	// ExpenseData groups the expense category endpoints.
	ExpenseData *ExpenseDataService
}

// ClientOption configures a Client before use.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL *url.URL) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithStage configures the client to use the Extend staging endpoint.
func WithStage() ClientOption {
	return func(c *Client) {
		stageURL, _ := url.Parse(StageURL)

		c.baseURL = stageURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets a custom User-Agent header for API requests.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for request diagnostics.
// Requests are logged at debug level; credentials are never logged.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an Extend API client authenticated with the given key and secret.
// The client defaults to the production endpoint and applies any provided options.
func New(apiKey, apiSecret string, opts ...ClientOption) *Client {
	productionURL, _ := url.Parse(ProductionURL)

	c := &Client{
		baseURL: productionURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:     apiKey,
		authHeader: basicAuth(apiKey, apiSecret),
		logger:     zap.NewNop(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.userAgent == "" {
		c.userAgent = userAgent()
	}

	c.VirtualCards = &VirtualCardsService{client: c}
	c.Transactions = &TransactionsService{client: c}
	c.CreditCards = &CreditCardsService{client: c}
	c.ReceiptAttachments = &ReceiptAttachmentsService{client: c}
	c.ExpenseData = &ExpenseDataService{client: c}

	return c
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func basicAuth(apiKey, apiSecret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey+":"+apiSecret))
}

// version returns the module version of the extend package.
// It returns "devel" if built without module version information.
func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}

	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			if dep.Version == "(devel)" {
				return "devel"
			}

			return dep.Version
		}
	}

	if info.Main.Path == modulePath && info.Main.Version != "(devel)" && info.Main.Version != "" {
		return info.Main.Version
	}

	return "devel"
}

// userAgent returns the default User-Agent string for this package.
func userAgent() string {
	return fmt.Sprintf("extend-go/%s (%s; %s/%s)", version(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
