package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProducerMessagesPublished counts the total number of messages published.
	ProducerMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_kafka_messages_published_total",
			Help: "Total number of Kafka messages published by the storefront client",
		},
		[]string{"topic"},
	)

	// ProducerPublishErrors counts the total number of publish failures.
	ProducerPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_kafka_publish_errors_total",
			Help: "Total number of Kafka publish errors",
		},
		[]string{"topic"},
	)
)
