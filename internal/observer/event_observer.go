package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AuthEvent represents a registration or verification lifecycle event
type AuthEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ItemID         string                 `json:"item_id,omitempty"`
	ImageRef       string                 `json:"image_ref,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of authentication event
type EventType string

const (
	// RegistrationStarted when a new item registration begins
	RegistrationStarted EventType = "registration_started"
	// RegistrationCompleted when registration finishes successfully
	RegistrationCompleted EventType = "registration_completed"
	// RegistrationFailed when registration fails
	RegistrationFailed EventType = "registration_failed"
	// VerificationCompleted when a verification run finishes
	VerificationCompleted EventType = "verification_completed"
	// VerificationFailed when a verification run fails
	VerificationFailed EventType = "verification_failed"
	// ExtractionDegraded when an analyzer fell back to a zero descriptor
	ExtractionDegraded EventType = "extraction_degraded"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AuthEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AuthEvent)
}

// LoggingObserver logs authentication events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles authentication events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AuthEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"item_id":         event.ItemID,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	if event.Metadata != nil {
		for k, v := range event.Metadata {
			fields[k] = v
		}
	}

	switch event.EventType {
	case RegistrationStarted:
		o.logger.WithFields(fields).Info("Item registration started")
	case RegistrationCompleted:
		o.logger.WithFields(fields).Info("Item registration completed")
	case RegistrationFailed:
		o.logger.WithFields(fields).Error("Item registration failed")
	case VerificationCompleted:
		o.logger.WithFields(fields).Info("Item verification completed")
	case VerificationFailed:
		o.logger.WithFields(fields).Error("Item verification failed")
	case ExtractionDegraded:
		o.logger.WithFields(fields).Warn("Extraction degraded to zero sub-descriptor")
	default:
		o.logger.WithFields(fields).Info("Authentication event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from authentication events
type MetricsObserver struct {
	mu                      sync.RWMutex
	totalRegistrations      int64
	successfulRegistrations int64
	failedRegistrations     int64
	totalVerifications      int64
	authenticVerifications  int64
	degradedExtractions     int64
	totalProcessingTime     time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles authentication events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AuthEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case RegistrationStarted:
		o.totalRegistrations++
	case RegistrationCompleted:
		o.successfulRegistrations++
		o.totalProcessingTime += event.ProcessingTime
	case RegistrationFailed:
		o.failedRegistrations++
	case VerificationCompleted:
		o.totalVerifications++
		if authentic, ok := event.Metadata["authentic"].(bool); ok && authentic {
			o.authenticVerifications++
		}
	case ExtractionDegraded:
		o.degradedExtractions++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulRegistrations > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulRegistrations)
	}

	return map[string]interface{}{
		"total_registrations":      o.totalRegistrations,
		"successful_registrations": o.successfulRegistrations,
		"failed_registrations":     o.failedRegistrations,
		"total_verifications":      o.totalVerifications,
		"authentic_verifications":  o.authenticVerifications,
		"degraded_extractions":     o.degradedExtractions,
		"avg_processing_time":      avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AuthEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
