package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidClient = errors.New("invalid client")

type Service interface {
	List(ctx context.Context) ([]Client, error)
	Get(ctx context.Context, id int) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, client Client) (Client, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) Create(ctx context.Context, client Client) (Client, error) {
	client, err := sanitize(client)
	if err != nil {
		return Client{}, err
	}
	id, err := s.repo.Store(ctx, client)
	if err != nil {
		return Client{}, err
	}
	client.Id = id
	return client, nil
}

func (s *ServiceImpl) Update(ctx context.Context, client Client) (Client, error) {
	client, err := sanitize(client)
	if err != nil {
		return Client{}, err
	}
	ok, err := s.repo.Update(ctx, client)
	if err != nil {
		return Client{}, err
	}
	if !ok {
		return Client{}, ErrClientNotFound
	}
	return client, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		log.Warnf("client %d not deleted, probably because it does not exist", id)
	}
	return deleted, nil
}

func sanitize(client Client) (Client, error) {
	client.Name = strings.TrimSpace(client.Name)
	client.Reference = strings.TrimSpace(client.Reference)
	if client.Name == "" {
		return Client{}, fmt.Errorf("%w: name is required", ErrInvalidClient)
	}
	return client, nil
}
