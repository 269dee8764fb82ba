package dynamock

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrUnexpectedCall is returned by MockClient operations without an expectation.
var ErrUnexpectedCall = errors.New("dynamock: unexpected call")

var (
	equalCondition      = regexp.MustCompile(`(#\w+) = (:\w+)`)
	beginsWithCondition = regexp.MustCompile(`begins_with \((#\w+), (:\w+)\)`)
)

// MemoryTable is an in-memory DynamoDBAPI for a single table with string
// pk and sk attributes. Queries support an equality condition on the
// partition key, an optional begins_with on the sort key, Limit,
// ExclusiveStartKey and ScanIndexForward. Filter expressions are ignored.
//
// MemoryTable is safe for concurrent use.
type MemoryTable struct {
	// Fail, when set, is consulted before every operation; a non-nil result
	// is returned instead of running the operation.
	Fail func(op string) error

	partitionKey string
	sortKey      string

	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	calls map[string]int
}

var _ DynamoDBAPI = (*MemoryTable)(nil)

// NewMemoryTable returns an empty table keyed by "pk" and "sk".
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{
		partitionKey: "pk",
		sortKey:      "sk",
		items:        make(map[string]map[string]types.AttributeValue),
		calls:        make(map[string]int),
	}
}

// Calls returns how many times op was invoked, failed calls included.
func (m *MemoryTable) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Items returns a copy of every stored item ordered by pk then sk.
func (m *MemoryTable) Items() []map[string]types.AttributeValue {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, copyItem(m.items[k]))
	}
	return out
}

// Len returns the number of stored items.
func (m *MemoryTable) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryTable) begin(op string) error {
	m.mu.Lock()
	m.calls[op]++
	fail := m.Fail
	m.mu.Unlock()

	if fail != nil {
		return fail(op)
	}
	return nil
}

func (m *MemoryTable) storageKey(item map[string]types.AttributeValue) (string, string, string, error) {
	pk, ok := stringAttr(item, m.partitionKey)
	if !ok {
		return "", "", "", fmt.Errorf("dynamock: missing %s", m.partitionKey)
	}
	sk, ok := stringAttr(item, m.sortKey)
	if !ok {
		return "", "", "", fmt.Errorf("dynamock: missing %s", m.sortKey)
	}
	return pk + "\x00" + sk, pk, sk, nil
}

// PutItem stores params.Item, replacing any item with the same key.
func (m *MemoryTable) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if err := m.begin("PutItem"); err != nil {
		return nil, err
	}

	key, _, _, err := m.storageKey(params.Item)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.items[key] = copyItem(params.Item)
	m.mu.Unlock()
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem returns the item stored under params.Key, or an empty output.
func (m *MemoryTable) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if err := m.begin("GetItem"); err != nil {
		return nil, err
	}

	key, _, _, err := m.storageKey(params.Key)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if item, exists := m.items[key]; exists {
		return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

// BatchWriteItem applies every put and delete request. Nothing is left
// unprocessed.
func (m *MemoryTable) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if err := m.begin("BatchWriteItem"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, requests := range params.RequestItems {
		for _, request := range requests {
			switch {
			case request.PutRequest != nil:
				key, _, _, err := m.storageKey(request.PutRequest.Item)
				if err != nil {
					return nil, err
				}
				m.items[key] = copyItem(request.PutRequest.Item)
			case request.DeleteRequest != nil:
				key, _, _, err := m.storageKey(request.DeleteRequest.Key)
				if err != nil {
					return nil, err
				}
				delete(m.items, key)
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

// Query returns items of one partition ordered by sort key.
func (m *MemoryTable) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if err := m.begin("Query"); err != nil {
		return nil, err
	}

	cond, err := m.parseKeyCondition(params)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	var matched []map[string]types.AttributeValue
	for _, item := range m.items {
		pk, _ := stringAttr(item, m.partitionKey)
		sk, _ := stringAttr(item, m.sortKey)
		if pk == cond.partition && strings.HasPrefix(sk, cond.sortPrefix) {
			matched = append(matched, copyItem(item))
		}
	}
	m.mu.Unlock()

	forward := params.ScanIndexForward == nil || *params.ScanIndexForward
	sort.Slice(matched, func(i, j int) bool {
		a, _ := stringAttr(matched[i], m.sortKey)
		b, _ := stringAttr(matched[j], m.sortKey)
		if forward {
			return a < b
		}
		return a > b
	})

	if params.ExclusiveStartKey != nil {
		start, _ := stringAttr(params.ExclusiveStartKey, m.sortKey)
		for i, item := range matched {
			sk, _ := stringAttr(item, m.sortKey)
			if (forward && sk > start) || (!forward && sk < start) {
				matched = matched[i:]
				break
			}
			if i == len(matched)-1 {
				matched = nil
			}
		}
	}

	out := &dynamodb.QueryOutput{}
	if params.Limit != nil && int(*params.Limit) < len(matched) {
		matched = matched[:*params.Limit]
		last := matched[len(matched)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			m.partitionKey: last[m.partitionKey],
			m.sortKey:      last[m.sortKey],
		}
	}

	out.Items = matched
	out.Count = int32(len(matched))
	out.ScannedCount = out.Count
	return out, nil
}

type keyCondition struct {
	partition  string
	sortPrefix string
}

func (m *MemoryTable) parseKeyCondition(params *dynamodb.QueryInput) (keyCondition, error) {
	if params.KeyConditionExpression == nil {
		return keyCondition{}, errors.New("dynamock: query without key condition")
	}
	expr := *params.KeyConditionExpression

	resolve := func(name, value string) (string, string, error) {
		attr, ok := params.ExpressionAttributeNames[name]
		if !ok {
			return "", "", fmt.Errorf("dynamock: unknown attribute name %s", name)
		}
		v, ok := params.ExpressionAttributeValues[value]
		if !ok {
			return "", "", fmt.Errorf("dynamock: unknown attribute value %s", value)
		}
		s, ok := v.(*types.AttributeValueMemberS)
		if !ok {
			return "", "", fmt.Errorf("dynamock: %s is not a string", value)
		}
		return attr, s.Value, nil
	}

	var cond keyCondition
	found := false

	for _, match := range equalCondition.FindAllStringSubmatch(expr, -1) {
		attr, value, err := resolve(match[1], match[2])
		if err != nil {
			return keyCondition{}, err
		}
		if attr == m.partitionKey {
			cond.partition = value
			found = true
		}
	}
	if !found {
		return keyCondition{}, fmt.Errorf("dynamock: query must set %s", m.partitionKey)
	}

	if match := beginsWithCondition.FindStringSubmatch(expr); match != nil {
		attr, value, err := resolve(match[1], match[2])
		if err != nil {
			return keyCondition{}, err
		}
		if attr != m.sortKey {
			return keyCondition{}, fmt.Errorf("dynamock: begins_with on non-key attribute %s", attr)
		}
		cond.sortPrefix = value
	}

	return cond, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, bool) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return v.Value, true
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
