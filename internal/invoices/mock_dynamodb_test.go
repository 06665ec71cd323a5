package invoices

import (
	"context"
	"errors"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory invoices table for Query/DeleteItem.
// Items keep insertion order, which stands in for the sort-key order of a real table.
// NOTE: only the expression shapes produced by Store are understood.
type mockDynamo struct {
	mu       sync.Mutex
	items    []map[string]types.AttributeValue
	pageSize int

	queryInputs  []*dyn.QueryInput
	deleteInputs []*dyn.DeleteItemInput

	// queryErr is returned by the failOnQuery-th Query call (1-based).
	queryErr    error
	failOnQuery int
	deleteErr   error
}

func newMockDynamo(pageSize int) *mockDynamo {
	return &mockDynamo{pageSize: pageSize}
}

func (m *mockDynamo) put(item map[string]types.AttributeValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

func (m *mockDynamo) find(userID, invoiceID string) int {
	for i, it := range m.items {
		if sval(it[AttrUserID]) == userID && sval(it[AttrInvoiceID]) == invoiceID {
			return i
		}
	}
	return -1
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryInputs = append(m.queryInputs, params)
	if m.queryErr != nil && len(m.queryInputs) == m.failOnQuery {
		return nil, m.queryErr
	}

	// the key condition carries a single value: the partition key
	var userID string
	for _, v := range params.ExpressionAttributeValues {
		userID = sval(v)
	}
	if userID == "" {
		return nil, errors.New("no partition key value")
	}

	var matched []map[string]types.AttributeValue
	for _, it := range m.items {
		if sval(it[AttrUserID]) == userID {
			matched = append(matched, it)
		}
	}

	start := 0
	if params.ExclusiveStartKey != nil {
		last := sval(params.ExclusiveStartKey[AttrInvoiceID])
		for i, it := range matched {
			if sval(it[AttrInvoiceID]) == last {
				start = i + 1
			}
		}
	}

	size := m.pageSize
	if params.Limit != nil && (size == 0 || int(*params.Limit) < size) {
		size = int(*params.Limit)
	}
	if size == 0 {
		size = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]map[string]types.AttributeValue, 0, end-start)
	for _, it := range matched[start:end] {
		page = append(page, project(it, params))
	}
	out := &dyn.QueryOutput{Items: page, Count: int32(len(page))}
	if end < len(matched) {
		last := matched[end-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			AttrUserID:    last[AttrUserID],
			AttrInvoiceID: last[AttrInvoiceID],
		}
	}
	return out, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteInputs = append(m.deleteInputs, params)
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}

	idx := m.find(sval(params.Key[AttrUserID]), sval(params.Key[AttrInvoiceID]))
	if idx < 0 {
		if params.ConditionExpression != nil && strings.Contains(*params.ConditionExpression, "attribute_exists") {
			return nil, &types.ConditionalCheckFailedException{}
		}
		return &dyn.DeleteItemOutput{}, nil
	}
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	return &dyn.DeleteItemOutput{}, nil
}

// project applies a "#0, #1" style projection expression.
func project(item map[string]types.AttributeValue, params *dyn.QueryInput) map[string]types.AttributeValue {
	if params.ProjectionExpression == nil {
		return item
	}
	out := map[string]types.AttributeValue{}
	for _, p := range strings.Split(*params.ProjectionExpression, ",") {
		p = strings.TrimSpace(p)
		if name, ok := params.ExpressionAttributeNames[p]; ok {
			p = name
		}
		if v, ok := item[p]; ok {
			out[p] = v
		}
	}
	return out
}

func sval(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
