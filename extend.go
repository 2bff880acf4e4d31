// Package extend provides a client for the Extend virtual card API:
// https://developer.paywithextend.com
//
// Features:
// - Key/secret authentication attached to every request.
// - Resource scoped sub-clients for virtual cards, transactions, credit cards,
//   receipt attachments and expense data.
// - Local validation of request parameters before anything is sent.
// - Iterator-based traversal of paginated lists.
//
// Errors can be matched with [errors.Is] against [ErrValidation],
// [ErrTransport], [ErrStatus], [ErrRateLimit] and [ErrDecode]. Use
// [errors.As] with [*APIError] to read the status code and remote message.
package extend
