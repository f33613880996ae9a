// Package pipeline orchestrates document processing end to end: extraction,
// classification, structural analysis, chunking, validation, embedding, and
// storage on the way in; retrieval, reranking, and grounded answering on the
// way out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/bunsho/internal/chunking"
	"github.com/hyperjump/bunsho/internal/classify"
	"github.com/hyperjump/bunsho/internal/config"
	"github.com/hyperjump/bunsho/internal/embedding"
	"github.com/hyperjump/bunsho/internal/extract"
	"github.com/hyperjump/bunsho/internal/llm"
	"github.com/hyperjump/bunsho/internal/models"
	"github.com/hyperjump/bunsho/internal/retrieval"
	"github.com/hyperjump/bunsho/internal/storage"
	"github.com/hyperjump/bunsho/internal/structure"
	"github.com/hyperjump/bunsho/internal/vector"
)

// ErrNoResults is returned by Ask when retrieval finds nothing to ground an
// answer on.
var ErrNoResults = errors.New("no relevant content found")

// Document status values.
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// Pipeline wires the processing stages together. All dependencies are
// explicit; a Pipeline is safe for concurrent use to the extent its
// dependencies are.
type Pipeline struct {
	cfg         *config.Config
	registry    *extract.Registry
	classifier  *classify.Classifier
	structurer  *structure.Extractor
	validator   *chunking.Validator
	embedder    embedding.Embedder
	store       vector.Store
	db          storage.Storage
	interpreter *llm.Interpreter // nil when no LLM is configured
	retriever   *retrieval.Retriever
	reranker    *retrieval.Reranker
	formatter   *retrieval.ContextFormatter
	logger      *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithInterpreter sets the LLM interpreter used for language detection,
// document interpretation, and answer generation.
func WithInterpreter(interpreter *llm.Interpreter) Option {
	return func(p *Pipeline) {
		p.interpreter = interpreter
	}
}

// New creates a pipeline from its storage and model dependencies.
func New(cfg *config.Config, db storage.Storage, store vector.Store, embedder embedding.Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		registry:   extract.NewRegistry(),
		classifier: classify.NewClassifier(),
		structurer: structure.NewExtractor(),
		validator: chunking.NewValidator(
			cfg.Chunking.MinChunkSize,
			cfg.Chunking.MaxChunkSize,
			cfg.Chunking.MinQualityScore,
		),
		embedder: embedder,
		store:    store,
		db:       db,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	var scorer retrieval.Scorer
	if cfg.Retrieval.KeywordRerank {
		scorer = retrieval.NewKeywordScorer(0.5)
	}
	p.retriever = retrieval.NewRetriever(embedder, store, retrieval.WithLogger(p.logger))
	p.reranker = retrieval.NewReranker(scorer)
	p.formatter = retrieval.NewContextFormatter(cfg.Retrieval.MaxContextTokens)
	return p
}

// IngestFile processes the file at path into a new document with a generated
// ID. See IngestFileWithID.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*models.Document, error) {
	return p.IngestFileWithID(ctx, path, uuid.New().String())
}

// IngestFileWithID runs the full processing sequence on path, storing chunks
// and embeddings under docID. Re-ingesting an existing docID replaces its
// previous content. On failure everything written for docID is removed, so a
// document is either fully indexed or absent.
func (p *Pipeline) IngestFileWithID(ctx context.Context, path, docID string) (*models.Document, error) {
	content, err := p.registry.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	for _, warning := range content.Warnings {
		p.logger.Warn("extraction warning", zap.String("file", path), zap.String("warning", warning))
	}
	for _, msg := range content.Errors {
		p.logger.Warn("extraction degraded", zap.String("file", path), zap.String("error", msg))
	}

	content.Language = p.detectLanguage(ctx, content.CleanedText)

	classification := p.classifier.Classify(content)
	p.logger.Info("classified document",
		zap.String("file", path),
		zap.String("complexity", string(classification.Complexity)),
		zap.String("strategy", string(classification.RecommendedStrategy)),
		zap.Float64("confidence", classification.Confidence))

	docStructure := p.structurer.Extract(content)

	doc := &models.Document{
		ID:        docID,
		Filename:  filepath.Base(path),
		FileType:  strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		PageCount: content.PageCount,
		Language:  content.Language,
		Status:    StatusProcessing,
		Metadata: map[string]interface{}{
			"complexity":            string(classification.Complexity),
			"chunking_strategy":     string(classification.RecommendedStrategy),
			"classifier_confidence": classification.Confidence,
			"has_structure":         docStructure.HasHierarchy,
			"table_count":           len(content.ExtractedTables),
			"image_count":           content.ImageCount,
		},
	}
	if size, ok := content.Metadata["file_size"].(int64); ok {
		doc.FileSize = size
	}

	if p.interpreter != nil && p.cfg.LLM.Interpret {
		if interp, err := p.interpreter.InterpretDocument(ctx, content.CleanedText); err != nil {
			p.logger.Warn("document interpretation failed", zap.String("file", path), zap.Error(err))
		} else {
			doc.Metadata["interpretation"] = interp
		}
	}

	chunks, err := p.chunkContent(content, docStructure, classification, doc)
	if err != nil {
		return nil, err
	}

	report := p.validator.ValidateChunks(chunks)
	p.logger.Info("validated chunks",
		zap.String("document_id", docID),
		zap.Int("total", report.TotalChunks),
		zap.Int("invalid", report.InvalidChunks),
		zap.Int("warnings", report.TotalWarnings),
		zap.Float64("avg_quality", report.AvgQuality))

	// Replace any previous content for this ID before writing the new rows.
	if err := p.Delete(ctx, docID); err != nil {
		return nil, fmt.Errorf("replace document %s: %w", docID, err)
	}

	if err := p.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	if err := p.indexChunks(ctx, doc, chunks); err != nil {
		// Roll back so a failed ingest leaves nothing behind.
		if cleanupErr := p.Delete(ctx, docID); cleanupErr != nil {
			p.logger.Error("cleanup after failed ingest",
				zap.String("document_id", docID), zap.Error(cleanupErr))
		}
		return nil, err
	}

	if err := p.db.UpdateDocumentStatus(ctx, docID, StatusComplete); err != nil {
		return nil, fmt.Errorf("finalize document: %w", err)
	}
	doc.Status = StatusComplete

	p.logger.Info("ingested document",
		zap.String("document_id", docID),
		zap.String("file", path),
		zap.Int("chunks", len(chunks)))
	return doc, nil
}

func (p *Pipeline) detectLanguage(ctx context.Context, text string) string {
	if p.interpreter != nil {
		return p.interpreter.DetectLanguage(ctx, text)
	}
	return llm.DetectLanguageHeuristic(text)
}

// chunkContent selects the chunker from the recommended strategy and runs it.
// Hybrid shares the dynamic implementation; its distinct handling of mixed
// content lives in the metadata the dynamic chunker receives.
func (p *Pipeline) chunkContent(content *models.ExtractedContent, docStructure *models.DocumentStructure, classification *classify.Classification, doc *models.Document) ([]models.Chunk, error) {
	meta := map[string]interface{}{
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"language":    doc.Language,
	}

	var chunker chunking.Strategy
	var err error
	switch classification.RecommendedStrategy {
	case classify.StrategyFixed:
		chunker, err = chunking.NewFixedChunker(p.cfg.Chunking.ChunkSize, p.cfg.Chunking.ChunkOverlap)
	default:
		if len(docStructure.Sections) > 0 {
			meta["sections"] = docStructure.Sections
		}
		chunker, err = chunking.NewDynamicChunker(
			p.cfg.Chunking.ChunkSize,
			p.cfg.Chunking.ChunkOverlap,
			p.cfg.Chunking.RespectStructureOrDefault(),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("create chunker: %w", err)
	}

	return chunker.ChunkText(content.CleanedText, meta), nil
}

// indexChunks embeds chunk contents as passages and writes the vector and
// metadata rows.
func (p *Pipeline) indexChunks(ctx context.Context, doc *models.Document, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts, false)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	metadatas := make([]map[string]interface{}, len(chunks))
	records := make([]*models.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		ids[i] = doc.ID + "_" + chunk.ChunkID
		documents[i] = chunk.Content
		meta := map[string]interface{}{
			"document_id": doc.ID,
			"filename":    doc.Filename,
			"chunk_index": chunk.Index,
			"chunk_type":  string(chunk.Type),
		}
		if title, ok := chunk.Metadata["section_title"]; ok {
			meta["section_title"] = title
		}
		metadatas[i] = meta
		records[i] = &models.ChunkRecord{
			ID:         ids[i],
			DocumentID: doc.ID,
			Index:      chunk.Index,
			Content:    chunk.Content,
			Type:       string(chunk.Type),
			Tokens:     chunk.Tokens,
			StartPos:   chunk.StartPos,
			EndPos:     chunk.EndPos,
			Metadata:   chunk.Metadata,
		}
	}

	if err := p.store.Upsert(ctx, ids, vectors, documents, metadatas); err != nil {
		return fmt.Errorf("store embeddings: %w", err)
	}
	if err := p.db.BatchCreateChunks(ctx, records); err != nil {
		return fmt.Errorf("store chunk records: %w", err)
	}
	return nil
}

// Delete removes a document, its chunk rows, and its embeddings. Deleting a
// document that does not exist is not an error.
func (p *Pipeline) Delete(ctx context.Context, docID string) error {
	if _, err := p.store.DeleteWhere(ctx, map[string]interface{}{"document_id": docID}); err != nil {
		return fmt.Errorf("delete embeddings for %s: %w", docID, err)
	}
	if err := p.db.DeleteChunksByDocumentID(ctx, docID); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", docID, err)
	}
	if err := p.db.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete document %s: %w", docID, err)
	}
	return nil
}

// Query retrieves and reranks the top-k chunks for the question.
func (p *Pipeline) Query(ctx context.Context, question string, k int) ([]*models.RetrievedChunk, error) {
	if k <= 0 {
		k = p.cfg.Retrieval.TopK
	}
	candidates, err := p.retriever.Retrieve(ctx, question, k, nil)
	if err != nil {
		return nil, err
	}
	return p.reranker.Rerank(question, candidates, k)
}

// Ask answers a question grounded in retrieved chunks. Without a configured
// LLM the retrieved passages are returned with an explanatory answer text.
func (p *Pipeline) Ask(ctx context.Context, question string) (*models.Answer, error) {
	chunks, err := p.Query(ctx, question, p.cfg.Retrieval.TopK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoResults
	}

	contextText, sources := p.formatter.FormatContext(chunks)
	answer := &models.Answer{Question: question, Sources: sources}

	if p.interpreter == nil {
		answer.Text = "LLM integration unavailable. Returning retrieved passages only."
		return answer, nil
	}

	text, err := p.interpreter.GenerateAnswer(ctx, question, contextText)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer.Text = text
	return answer, nil
}

// Stats summarizes the indexed corpus.
type Stats struct {
	Documents  int64 `json:"documents"`
	Chunks     int64 `json:"chunks"`
	Embeddings int   `json:"embeddings"`
}

// GetStats returns corpus counts from both stores.
func (p *Pipeline) GetStats(ctx context.Context) (*Stats, error) {
	docs, err := p.db.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	chunks, err := p.db.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	embeddings, err := p.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count embeddings: %w", err)
	}
	return &Stats{Documents: docs, Chunks: chunks, Embeddings: embeddings}, nil
}

// ListDocuments returns stored documents newest first.
func (p *Pipeline) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	return p.db.ListDocuments(ctx, offset, limit)
}

// GetDocument returns one document by ID.
func (p *Pipeline) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return p.db.GetDocument(ctx, id)
}

// GetChunks returns a document's chunk rows in order.
func (p *Pipeline) GetChunks(ctx context.Context, docID string) ([]*models.ChunkRecord, error) {
	return p.db.GetChunksByDocumentID(ctx, docID)
}

// SupportedExtensions lists the file extensions the pipeline can ingest.
func (p *Pipeline) SupportedExtensions() []string {
	return p.registry.SupportedExtensions()
}

// Supports reports whether the extension can be ingested.
func (p *Pipeline) Supports(ext string) bool {
	return p.registry.Supports(ext)
}
