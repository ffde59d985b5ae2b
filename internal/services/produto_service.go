package services

import (
	"time"

	"produtoapi/internal/models"
	"produtoapi/internal/repositories"
	"produtoapi/pkg/logger"
)

// EventPublisher publishes produto lifecycle events to a broker.
type EventPublisher interface {
	PublishProdutoEvent(event models.ProdutoEvent) error
}

// ProdutoService handles business logic related to produtos.
type ProdutoService struct {
	repo      repositories.ProdutoRepository
	publisher EventPublisher // nil disables events
	log       *logger.Logger
	now       func() time.Time
}

// NewProdutoService creates a new ProdutoService. publisher may be nil.
func NewProdutoService(repo repositories.ProdutoRepository, publisher EventPublisher, log *logger.Logger) *ProdutoService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProdutoService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// List retrieves all produtos.
func (s *ProdutoService) List() ([]models.Produto, error) {
	return s.repo.FindAll()
}

// Get retrieves a single produto by its ID.
func (s *ProdutoService) Get(id int64) (*models.Produto, error) {
	return s.repo.FindByID(id)
}

// Create stores a new produto. Any ID sent by the client is discarded so the
// store always assigns a fresh one.
func (s *ProdutoService) Create(produto *models.Produto) error {
	produto.ID = 0
	if err := s.repo.Save(produto); err != nil {
		return err
	}
	s.publish(models.ProdutoCreated, produto.ID, produto)
	return nil
}

// Update fully replaces the produto stored under id. The path id always wins
// over the ID in the payload.
func (s *ProdutoService) Update(id int64, produto *models.Produto) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return err
	}
	produto.ID = id
	if err := s.repo.Save(produto); err != nil {
		return err
	}
	s.publish(models.ProdutoUpdated, id, produto)
	return nil
}

// Delete removes the produto stored under id.
func (s *ProdutoService) Delete(id int64) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(id); err != nil {
		return err
	}
	s.publish(models.ProdutoDeleted, id, nil)
	return nil
}

// publish is best effort: a broker failure never fails the request.
func (s *ProdutoService) publish(eventType models.ProdutoEventType, id int64, produto *models.Produto) {
	if s.publisher == nil {
		return
	}

	event := models.ProdutoEvent{
		Type:       eventType,
		ProdutoID:  id,
		OccurredAt: s.now().UTC(),
	}
	if produto != nil {
		snapshot := *produto
		event.Produto = &snapshot
	}

	if err := s.publisher.PublishProdutoEvent(event); err != nil {
		s.log.Warn().Err(err).
			Str("event", string(eventType)).
			Int64("produto_id", id).
			Msg("failed to publish produto event")
	}
}
