// Package identity talks to the remote profile document store. Reads
// return an explicit tri-state result so callers decide how to degrade
// when the store is offline instead of the client silently swallowing
// the failure.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"github.com/hunter4ass/OWLD/pkg/utils"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupUnreachable
)

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lookup carries the read outcome; Profile is non-nil only for LookupFound.
type Lookup struct {
	Status  LookupStatus
	Profile *Profile
}

type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type Client interface {
	Create(ctx context.Context, id, name, email string) error
	Get(ctx context.Context, id string) Lookup
	Update(ctx context.Context, id string, update ProfileUpdate) error
}

type client struct {
	http   *resty.Client
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
	tracer trace.Tracer
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) Client {
	settings := gobreaker.Settings{
		Name:        "IdentityStore",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
		tracer: otel.Tracer("identity/client"),
	}
}

func (c *client) Create(ctx context.Context, id, name, email string) error {
	ctx, span := c.tracer.Start(ctx, "IdentityClient.Create")
	defer span.End()

	now := time.Now()
	profile := Profile{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := utils.ExecuteWithBreaker(c.cb, func() (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(profile).
			Put(fmt.Sprintf("/v1/profiles/%s", id))
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("identity store returned %d", resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		span.RecordError(err)

		logging.Warn(
			ctx,
			c.logger,
			"Failed to create remote profile",
			zap.String("user_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error creating profile: %w", err)
	}

	return nil
}

func (c *client) Get(ctx context.Context, id string) Lookup {
	ctx, span := c.tracer.Start(ctx, "IdentityClient.Get")
	defer span.End()

	type outcome struct {
		profile  *Profile
		notFound bool
	}

	res, err := utils.ExecuteWithBreaker(c.cb, func() (outcome, error) {
		var profile Profile
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&profile).
			Get(fmt.Sprintf("/v1/profiles/%s", id))
		if err != nil {
			return outcome{}, err
		}
		if resp.StatusCode() == 404 {
			return outcome{notFound: true}, nil
		}
		if resp.IsError() {
			return outcome{}, fmt.Errorf("identity store returned %d", resp.StatusCode())
		}
		return outcome{profile: &profile}, nil
	})
	if err != nil {
		span.RecordError(err)

		logging.Warn(
			ctx,
			c.logger,
			"Identity store unreachable",
			zap.String("user_id", id),
			zap.Error(err),
		)

		return Lookup{Status: LookupUnreachable}
	}

	if res.notFound {
		return Lookup{Status: LookupNotFound}
	}

	return Lookup{Status: LookupFound, Profile: res.profile}
}

func (c *client) Update(ctx context.Context, id string, update ProfileUpdate) error {
	ctx, span := c.tracer.Start(ctx, "IdentityClient.Update")
	defer span.End()

	body := map[string]interface{}{
		"updatedAt": time.Now(),
	}
	if update.Name != nil {
		body["name"] = *update.Name
	}
	if update.Email != nil {
		body["email"] = *update.Email
	}

	_, err := utils.ExecuteWithBreaker(c.cb, func() (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			Patch(fmt.Sprintf("/v1/profiles/%s", id))
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("identity store returned %d", resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		span.RecordError(err)

		logging.Warn(
			ctx,
			c.logger,
			"Failed to update remote profile",
			zap.String("user_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating profile: %w", err)
	}

	return nil
}
