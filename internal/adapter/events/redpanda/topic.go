package redpanda

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// createTopicIfNotExists issues a CreateTopics request; a topic that
// already exists is not an error for the caller.
func createTopicIfNotExists(client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := kmsg.NewCreateTopicsRequest()
	req.TimeoutMillis = 30000
	topicReq := kmsg.NewCreateTopicsRequestTopic()
	topicReq.Topic = topic
	topicReq.NumPartitions = partitions
	topicReq.ReplicationFactor = replicationFactor
	req.Topics = append(req.Topics, topicReq)

	resp, err := client.Request(ctx, &req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	createResp, ok := resp.(*kmsg.CreateTopicsResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}
	for _, t := range createResp.Topics {
		if t.ErrorCode != 0 && t.ErrorCode != 36 { // 36: topic already exists
			msg := ""
			if t.ErrorMessage != nil {
				msg = *t.ErrorMessage
			}
			return fmt.Errorf("create topic %s: code=%d %s", t.Topic, t.ErrorCode, msg)
		}
	}
	return nil
}
