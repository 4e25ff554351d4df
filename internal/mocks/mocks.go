package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatly-service/internal/models"
	"chatly-service/internal/repositories"
)

type RequestRepositoryMock struct {
	mock.Mock
}

func (m *RequestRepositoryMock) Create(ctx context.Context, senderID, receiverID, firstMessage string) (models.ChatRequest, error) {
	args := m.Called(ctx, senderID, receiverID, firstMessage)
	var request models.ChatRequest
	if val := args.Get(0); val != nil {
		request = val.(models.ChatRequest)
	}
	return request, args.Error(1)
}

func (m *RequestRepositoryMock) GetByID(ctx context.Context, requestID string) (models.ChatRequest, error) {
	args := m.Called(ctx, requestID)
	var request models.ChatRequest
	if val := args.Get(0); val != nil {
		request = val.(models.ChatRequest)
	}
	return request, args.Error(1)
}

func (m *RequestRepositoryMock) FindByPair(ctx context.Context, userA, userB string) (models.ChatRequest, error) {
	args := m.Called(ctx, userA, userB)
	var request models.ChatRequest
	if val := args.Get(0); val != nil {
		request = val.(models.ChatRequest)
	}
	return request, args.Error(1)
}

func (m *RequestRepositoryMock) MarkAccepted(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *RequestRepositoryMock) Delete(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *RequestRepositoryMock) DeleteByPair(ctx context.Context, userA, userB string) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

func (m *RequestRepositoryMock) ListPending(ctx context.Context, receiverID string) ([]models.PendingRequest, error) {
	args := m.Called(ctx, receiverID)
	var requests []models.PendingRequest
	if val := args.Get(0); val != nil {
		requests = val.([]models.PendingRequest)
	}
	return requests, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, senderID, receiverID, body string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListBetween(ctx context.Context, userA, userB string) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListSelf(ctx context.Context, userID string) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteBetween(ctx context.Context, userA, userB string) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	args := m.Called(ctx)
	var users []models.UserProfile
	if val := args.Get(0); val != nil {
		users = val.([]models.UserProfile)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) AddFriendship(ctx context.Context, userID, friendID string) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

var _ repositories.RequestRepository = (*RequestRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
