package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasanthanrk/careerboost/internal/subscription"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetOrCreate(ctx context.Context, userID int, feature string) (*UserMetric, error) {
	args := m.Called(ctx, userID, feature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserMetric), args.Error(1)
}

func (m *MockRepository) Increment(ctx context.Context, userID int, feature string) (int, error) {
	args := m.Called(ctx, userID, feature)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ConsumeWithinLimit(ctx context.Context, userID int, feature string, limit int) (int, bool, error) {
	args := m.Called(ctx, userID, feature, limit)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Status(ctx context.Context, userID int) (*subscription.StatusView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.StatusView), args.Error(1)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, userID int) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Sweep(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockSubscriptionService) Entitled(ctx context.Context, userID int, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, now)
	return args.Bool(0), args.Error(1)
}

func TestCheck_EntitledUserBypassesMetering(t *testing.T) {
	repo := new(MockRepository)
	subs := new(MockSubscriptionService)
	svc := NewService(repo, subs)

	subs.On("Entitled", mock.Anything, 1, mock.Anything).Return(true, nil)

	q, err := svc.Check(context.Background(), 1, "ai_resume_generate")
	require.NoError(t, err)
	assert.True(t, q.Allowed)
	assert.Equal(t, 0, q.Used)
	assert.Equal(t, UnlimitedLimit, q.Limit)
	repo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheck_FreeTierWithinLimit(t *testing.T) {
	repo := new(MockRepository)
	subs := new(MockSubscriptionService)
	svc := NewService(repo, subs)

	subs.On("Entitled", mock.Anything, 1, mock.Anything).Return(false, nil)
	repo.On("GetOrCreate", mock.Anything, 1, "ai_resume_generate").
		Return(&UserMetric{UserID: 1, FeatureName: "ai_resume_generate", Count: 2}, nil)

	q, err := svc.Check(context.Background(), 1, "ai_resume_generate")
	require.NoError(t, err)
	assert.True(t, q.Allowed)
	assert.Equal(t, 2, q.Used)
	assert.Equal(t, 3, q.Limit)
}

func TestCheck_FreeTierAtLimit(t *testing.T) {
	repo := new(MockRepository)
	subs := new(MockSubscriptionService)
	svc := NewService(repo, subs)

	subs.On("Entitled", mock.Anything, 1, mock.Anything).Return(false, nil)
	repo.On("GetOrCreate", mock.Anything, 1, "ai_resume_generate").
		Return(&UserMetric{UserID: 1, FeatureName: "ai_resume_generate", Count: 3}, nil)

	q, err := svc.Check(context.Background(), 1, "ai_resume_generate")
	require.NoError(t, err)
	assert.False(t, q.Allowed)
	assert.Equal(t, 3, q.Used)
	assert.Equal(t, 3, q.Limit)
}

func TestCheck_UnknownFeatureBlocked(t *testing.T) {
	repo := new(MockRepository)
	subs := new(MockSubscriptionService)
	svc := NewService(repo, subs)

	subs.On("Entitled", mock.Anything, 1, mock.Anything).Return(false, nil)
	repo.On("GetOrCreate", mock.Anything, 1, "nonexistent_feature").
		Return(&UserMetric{UserID: 1, FeatureName: "nonexistent_feature", Count: 0}, nil)

	q, err := svc.Check(context.Background(), 1, "nonexistent_feature")
	require.NoError(t, err)
	assert.False(t, q.Allowed)
	assert.Equal(t, 0, q.Limit)
}

func TestCheck_SingleUseFeatures(t *testing.T) {
	tests := []struct {
		feature string
		count   int
		allowed bool
	}{
		{"cover_letter_generate", 0, true},
		{"cover_letter_generate", 1, false},
		{"cover_letter_download", 0, true},
		{"cover_letter_download", 1, false},
		{"ats_check", 0, true},
		{"ats_check", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.feature, func(t *testing.T) {
			repo := new(MockRepository)
			subs := new(MockSubscriptionService)
			svc := NewService(repo, subs)

			subs.On("Entitled", mock.Anything, 1, mock.Anything).Return(false, nil)
			repo.On("GetOrCreate", mock.Anything, 1, tt.feature).
				Return(&UserMetric{UserID: 1, FeatureName: tt.feature, Count: tt.count}, nil)

			q, err := svc.Check(context.Background(), 1, tt.feature)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, q.Allowed)
			assert.Equal(t, 1, q.Limit)
		})
	}
}

func TestIncrementService(t *testing.T) {
	repo := new(MockRepository)
	subs := new(MockSubscriptionService)
	svc := NewService(repo, subs)

	repo.On("Increment", mock.Anything, 1, "resume_download").Return(2, nil)

	count, err := svc.Increment(context.Background(), 1, "resume_download")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestConsume_EntitledUserBypassesMetering(t *testing.T) {
	repo := new(MockRepository)
	subs := new(MockSubscriptionService)
	svc := NewService(repo, subs)

	subs.On("Entitled", mock.Anything, 1, mock.Anything).Return(true, nil)

	q, err := svc.Consume(context.Background(), 1, "ats_check")
	require.NoError(t, err)
	assert.True(t, q.Allowed)
	assert.Equal(t, UnlimitedLimit, q.Limit)
	repo.AssertNotCalled(t, "ConsumeWithinLimit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConsume_FreeTier(t *testing.T) {
	repo := new(MockRepository)
	subs := new(MockSubscriptionService)
	svc := NewService(repo, subs)

	subs.On("Entitled", mock.Anything, 1, mock.Anything).Return(false, nil)
	repo.On("ConsumeWithinLimit", mock.Anything, 1, "job_fit_analysis", 3).Return(1, true, nil)

	q, err := svc.Consume(context.Background(), 1, "job_fit_analysis")
	require.NoError(t, err)
	assert.True(t, q.Allowed)
	assert.Equal(t, 1, q.Used)
	assert.Equal(t, 3, q.Limit)
}

func TestConsume_FreeTierDenied(t *testing.T) {
	repo := new(MockRepository)
	subs := new(MockSubscriptionService)
	svc := NewService(repo, subs)

	subs.On("Entitled", mock.Anything, 1, mock.Anything).Return(false, nil)
	repo.On("ConsumeWithinLimit", mock.Anything, 1, "job_fit_analysis", 3).Return(3, false, nil)

	q, err := svc.Consume(context.Background(), 1, "job_fit_analysis")
	require.NoError(t, err)
	assert.False(t, q.Allowed)
	assert.Equal(t, 3, q.Used)
}

func TestQuotaJSON(t *testing.T) {
	metered, err := Quota{Allowed: true, Used: 2, Limit: 3}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"allowed": true, "used": 2, "limit": 3}`, string(metered))

	unlimited, err := Quota{Allowed: true, Used: 0, Limit: UnlimitedLimit}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"allowed": true, "used": 0, "limit": "unlimited"}`, string(unlimited))
}
