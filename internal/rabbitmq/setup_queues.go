package rabbitmq

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetPremiumQueues возвращает очереди событий премиума.
func GetPremiumQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "premium.granted", RoutingKey: "granted"},
		{QueueName: "premium.revoked", RoutingKey: "revoked"},
	}
}
