package client

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu      sync.Mutex
	nextId  int
	clients map[int]Client
	err     error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{clients: map[int]Client{}}
}

func (s *RepositoryStub) Store(ctx context.Context, client Client) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.nextId++
	client.Id = s.nextId
	s.clients[client.Id] = client
	return client.Id, nil
}

func (s *RepositoryStub) Get(ctx context.Context, id int) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Client{}, s.err
	}
	client, ok := s.clients[id]
	if !ok {
		return Client{}, ErrClientNotFound
	}
	return client, nil
}

func (s *RepositoryStub) List(ctx context.Context) ([]Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	clients := make([]Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Id < clients[j].Id })
	return clients, nil
}

func (s *RepositoryStub) Update(ctx context.Context, client Client) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.clients[client.Id]; !ok {
		return false, nil
	}
	s.clients[client.Id] = client
	return true, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if _, ok := s.clients[id]; !ok {
		return false, nil
	}
	delete(s.clients, id)
	return true, nil
}

// SetError makes every following call fail with err until Reset.
func (s *RepositoryStub) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *RepositoryStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId = 0
	s.clients = map[int]Client{}
	s.err = nil
}
