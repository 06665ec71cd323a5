package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/imrishuroy/go-invoice-handlers/internal/aws"
)

var (
	// ErrNotFound is returned when a conditional delete finds no invoice under the caller's key.
	ErrNotFound = errors.New("invoice not found")
	// ErrMalformedRecord indicates a stored item that does not decode into an invoice.
	ErrMalformedRecord = errors.New("malformed invoice record")
	// ErrMissingUserID is returned before any store access when no user id is given.
	ErrMissingUserID = errors.New("user id is required")
	// ErrMissingInvoiceID is returned before any store access when no invoice id is given.
	ErrMissingInvoiceID = errors.New("invoice id is required")
)

// Store encapsulates operations on the invoices table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	pageSize  int32
	location  *time.Location
	nowFunc   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the Limit of each page query. Zero leaves paging to DynamoDB.
func WithPageSize(n int32) Option {
	return func(s *Store) { s.pageSize = n }
}

// WithLocation sets the time zone date-only invoice dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewStore creates a new invoices Store.
func NewStore(client aws.DynamoDBAPI, tableName string, opts ...Option) *Store {
	s := &Store{
		client:    client,
		tableName: tableName,
		location:  time.UTC,
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListByUser returns every invoice owned by userID, in store order, with statuses
// derived at a single instant. Counter items are skipped. Pages are read one after
// another until DynamoDB stops returning a LastEvaluatedKey; any failing page aborts
// the whole listing.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Invoice, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	expr, err := listExpression(userID)
	if err != nil {
		return nil, fmt.Errorf("build query expression: %w", err)
	}

	now := s.nowFunc()
	invoices := make([]Invoice, 0)
	var startKey map[string]types.AttributeValue

	for {
		input := &dyn.QueryInput{
			TableName:                 &s.tableName,
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		}
		if s.pageSize > 0 {
			input.Limit = &s.pageSize
		}

		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query invoices: %w", err)
		}

		page, err := s.decodePage(out.Items, now)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return invoices, nil
}

// decodePage drops counter items and annotates the rest with their status.
func (s *Store) decodePage(items []map[string]types.AttributeValue, now time.Time) ([]Invoice, error) {
	out := make([]Invoice, 0, len(items))
	for _, item := range items {
		id, ok := item[AttrInvoiceID].(*types.AttributeValueMemberS)
		if !ok {
			return nil, fmt.Errorf("%w: missing or non-string %s", ErrMalformedRecord, AttrInvoiceID)
		}
		if strings.HasPrefix(id.Value, CounterPrefix) {
			continue
		}

		var r Record
		if err := attributevalue.UnmarshalMap(item, &r); err != nil {
			return nil, fmt.Errorf("%w: invoice %s: %v", ErrMalformedRecord, id.Value, err)
		}
		inv, err := WithStatus(r, now, s.location)
		if err != nil {
			return nil, fmt.Errorf("%w: invoice %s: %v", ErrMalformedRecord, id.Value, err)
		}
		out = append(out, inv)
	}
	return out, nil
}

// Delete removes the invoice keyed by (invoiceID, userID). The delete is conditioned on
// the key existing, so a missing invoice or one owned by another user yields ErrNotFound.
func (s *Store) Delete(ctx context.Context, userID, invoiceID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if invoiceID == "" {
		return ErrMissingInvoiceID
	}

	cond := expression.AttributeExists(expression.Name(AttrInvoiceID)).
		And(expression.AttributeExists(expression.Name(AttrUserID)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("build delete condition: %w", err)
	}

	input := &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			AttrInvoiceID: &types.AttributeValueMemberS{Value: invoiceID},
			AttrUserID:    &types.AttributeValueMemberS{Value: userID},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	_, err = s.client.DeleteItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("delete invoice %s: %w", invoiceID, ErrNotFound)
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func listExpression(userID string) (expression.Expression, error) {
	keyCond := expression.Key(AttrUserID).Equal(expression.Value(userID))

	names := make([]expression.NameBuilder, 0, len(listProjection))
	for _, n := range listProjection {
		names = append(names, expression.Name(n))
	}
	proj := expression.NamesList(names[0], names[1:]...)

	return expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithProjection(proj).
		Build()
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}
