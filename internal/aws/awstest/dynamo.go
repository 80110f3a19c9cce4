// Package awstest provides in-memory fakes of the AWS client interfaces for
// unit tests.
package awstest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	setClause       = regexp.MustCompile(`([#\w]+)\s*=\s*(if_not_exists\(\s*[#\w]+\s*,\s*(:\w+)\s*\)\s*\+\s*(:\w+)|:\w+)`)
	notExistsClause = regexp.MustCompile(`^attribute_not_exists\(\s*([#\w]+)\s*\)$`)
	existsClause    = regexp.MustCompile(`^attribute_exists\(\s*([#\w]+)\s*\)$`)
	equalsClause    = regexp.MustCompile(`^([#\w]+)\s*=\s*(:\w+)$`)
)

// Dynamo is a multi-table DynamoDB fake. Each table is keyed by the
// attribute named in Keys. It understands the SET updates and the
// attribute_(not_)exists / equality conditions the stores issue.
type Dynamo struct {
	mu     sync.Mutex
	Keys   map[string]string
	Tables map[string]map[string]map[string]types.AttributeValue
	Calls  map[string]int
	// Errs forces an operation (by method name) to fail.
	Errs map[string]error
}

// NewDynamo returns an empty fake. keys maps table name to its hash key attribute.
func NewDynamo(keys map[string]string) *Dynamo {
	return &Dynamo{
		Keys:   keys,
		Tables: map[string]map[string]map[string]types.AttributeValue{},
		Calls:  map[string]int{},
		Errs:   map[string]error{},
	}
}

// Item returns a stored item or nil.
func (d *Dynamo) Item(table, key string) map[string]types.AttributeValue {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Tables[table][key]
}

// Count returns the number of items in table.
func (d *Dynamo) Count(table string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Tables[table])
}

func (d *Dynamo) table(name string) map[string]map[string]types.AttributeValue {
	if _, ok := d.Tables[name]; !ok {
		d.Tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return d.Tables[name]
}

func (d *Dynamo) key(table string, attrs map[string]types.AttributeValue) (string, error) {
	name, ok := d.Keys[table]
	if !ok {
		return "", fmt.Errorf("awstest: unknown table %q", table)
	}
	v, ok := attrs[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("awstest: item has no %s", name)
	}
	return v.Value, nil
}

func (d *Dynamo) enter(op string) error {
	d.Calls[op]++
	return d.Errs[op]
}

func (d *Dynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("PutItem"); err != nil {
		return nil, err
	}
	k, err := d.key(*params.TableName, params.Item)
	if err != nil {
		return nil, err
	}
	tbl := d.table(*params.TableName)
	if !conditionHolds(params.ConditionExpression, tbl[k], params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
	}
	tbl[k] = copyItem(params.Item)
	return &dyn.PutItemOutput{}, nil
}

func (d *Dynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("GetItem"); err != nil {
		return nil, err
	}
	k, err := d.key(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := d.table(*params.TableName)[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: copyItem(item)}, nil
}

func (d *Dynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("UpdateItem"); err != nil {
		return nil, err
	}
	k, err := d.key(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	tbl := d.table(*params.TableName)
	current := tbl[k]
	if !conditionHolds(params.ConditionExpression, current, params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
	}
	item := copyItem(current)
	if item == nil {
		item = copyItem(params.Key)
	}
	if err := applySet(item, params.UpdateExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	tbl[k] = item
	return &dyn.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

func (d *Dynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("TransactWriteItems"); err != nil {
		return nil, err
	}
	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	for i, it := range params.TransactItems {
		reasons[i] = types.CancellationReason{Code: strPtr("None")}
		p := it.Put
		if p == nil {
			return nil, errors.New("awstest: only Put is supported in transactions")
		}
		k, err := d.key(*p.TableName, p.Item)
		if err != nil {
			return nil, err
		}
		if !conditionHolds(p.ConditionExpression, d.table(*p.TableName)[k], p.ExpressionAttributeNames, p.ExpressionAttributeValues) {
			reasons[i] = types.CancellationReason{Code: strPtr("ConditionalCheckFailed")}
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             strPtr("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}
	for _, it := range params.TransactItems {
		k, _ := d.key(*it.Put.TableName, it.Put.Item)
		d.table(*it.Put.TableName)[k] = copyItem(it.Put.Item)
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

func conditionHolds(expr *string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) bool {
	if expr == nil || strings.TrimSpace(*expr) == "" {
		return true
	}
	for _, clause := range strings.Split(*expr, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case notExistsClause.MatchString(clause):
			attr := resolve(notExistsClause.FindStringSubmatch(clause)[1], names)
			if _, ok := item[attr]; ok {
				return false
			}
		case existsClause.MatchString(clause):
			attr := resolve(existsClause.FindStringSubmatch(clause)[1], names)
			if _, ok := item[attr]; !ok {
				return false
			}
		case equalsClause.MatchString(clause):
			m := equalsClause.FindStringSubmatch(clause)
			got, ok := item[resolve(m[1], names)].(*types.AttributeValueMemberS)
			want, _ := values[m[2]].(*types.AttributeValueMemberS)
			if !ok || want == nil || got.Value != want.Value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func applySet(item map[string]types.AttributeValue, expr *string, names map[string]string, values map[string]types.AttributeValue) error {
	if expr == nil {
		return errors.New("awstest: missing update expression")
	}
	body := strings.TrimSpace(*expr)
	if !strings.HasPrefix(body, "SET ") {
		return fmt.Errorf("awstest: unsupported update %q", body)
	}
	for _, m := range setClause.FindAllStringSubmatch(body[4:], -1) {
		attr := resolve(m[1], names)
		if m[3] == "" {
			item[attr] = values[m[2]]
			continue
		}
		base := numberOf(values[m[3]])
		if cur, ok := item[attr]; ok {
			base = numberOf(cur)
		}
		item[attr] = &types.AttributeValueMemberN{Value: strconv.FormatInt(base+numberOf(values[m[4]]), 10)}
	}
	return nil
}

func resolve(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		if real, ok := names[name]; ok {
			return real
		}
	}
	return name
}

func numberOf(v types.AttributeValue) int64 {
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	i, _ := strconv.ParseInt(n.Value, 10, 64)
	return i
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func strPtr(s string) *string { return &s }
