package interfaces

type EventPublisher interface {
	Publish(topic string, key string, event any) error
}
