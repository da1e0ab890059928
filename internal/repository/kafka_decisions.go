package repository

import (
	"context"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	pkgkafka "AtlasQuant/pkg/kafka"
)

// KafkaDecisions implements DecisionPublisher on Kafka. Reports and intents
// go to separate topics, keyed by ticker so one instrument stays ordered on
// a single partition.
type KafkaDecisions struct {
	producer    *pkgkafka.Producer
	reportTopic string
	intentTopic string
}

// NewKafkaDecisions creates a decision publisher.
func NewKafkaDecisions(producer *pkgkafka.Producer, reportTopic, intentTopic string) drepo.DecisionPublisher {
	if reportTopic == "" {
		reportTopic = "decision.reports"
	}
	if intentTopic == "" {
		intentTopic = "decision.intents"
	}
	return &KafkaDecisions{producer: producer, reportTopic: reportTopic, intentTopic: intentTopic}
}

func (p *KafkaDecisions) PublishReport(ctx context.Context, report *models.AnalysisReport) error {
	return p.producer.Publish(ctx, p.reportTopic, []byte(report.Ticker), report)
}

func (p *KafkaDecisions) PublishIntent(ctx context.Context, intent *models.OrderIntent) error {
	return p.producer.Publish(ctx, p.intentTopic, []byte(intent.Ticker), intent)
}

func (p *KafkaDecisions) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
