package extend

import (
	"context"
	"io"
	"strings"
)

// ReceiptAttachment is a receipt file attached to a transaction.
type ReceiptAttachment struct {
	ID            string      `json:"id"`
	TransactionID string      `json:"transactionId"`
	ContentType   string      `json:"contentType,omitempty"`
	URLs          ReceiptURLs `json:"urls"`
	CreatedAt     Time        `json:"createdAt"`
	// UploadType is where the receipt was uploaded from, e.g. TRANSACTION.
	UploadType string `json:"uploadType,omitempty"`
}

// ReceiptURLs are the download links of a receipt.
type ReceiptURLs struct {
	Original  string `json:"original,omitempty"`
	Main      string `json:"main,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// ReceiptAttachmentsService groups the receipt upload endpoints.
type ReceiptAttachmentsService struct {
	client *Client
}

// Create uploads a receipt file and attaches it to a transaction.
func (s *ReceiptAttachmentsService) Create(
	ctx context.Context,
	transactionID, fileName string,
	file io.Reader,
) (*ReceiptAttachment, error) {
	if err := requireID("transactionId", transactionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, invalid("fileName", "is required")
	}
	if file == nil {
		return nil, invalid("file", "is required")
	}

	req, err := s.client.newMultipartRequest(ctx,
		"receiptattachments",
		map[string]string{"transactionId": transactionID},
		"file", fileName, file,
	)
	if err != nil {
		return nil, err
	}

	var result ReceiptAttachment
	if _, err := s.client.doJSON(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
