package awstest

import (
	"context"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQS records sent messages.
type SQS struct {
	mu     sync.Mutex
	Inputs []*sqs.SendMessageInput
	Err    error
}

func (f *SQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Inputs = append(f.Inputs, params)
	return &sqs.SendMessageOutput{MessageId: sdkaws.String(fmt.Sprintf("msg-%d", len(f.Inputs)))}, nil
}

// Bodies returns the sent message bodies in order.
func (f *SQS) Bodies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Inputs))
	for _, in := range f.Inputs {
		out = append(out, sdkaws.ToString(in.MessageBody))
	}
	return out
}

// CloudWatch records metric data.
type CloudWatch struct {
	mu     sync.Mutex
	Inputs []*cloudwatch.PutMetricDataInput
	Err    error
}

func (f *CloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Inputs = append(f.Inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// Names returns the metric names recorded so far.
func (f *CloudWatch) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, in := range f.Inputs {
		for _, d := range in.MetricData {
			out = append(out, sdkaws.ToString(d.MetricName))
		}
	}
	return out
}
