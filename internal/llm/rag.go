// In file: internal/llm/rag.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/textsplitter"
	"golang.org/x/sync/errgroup"
)

// =================================================================================
// Configuration
// =================================================================================

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	defaultTopK         = 3
)

// RAGConfig controls how the document corpus is built and searched.
type RAGConfig struct {
	DocumentsDir string
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

func (c RAGConfig) withDefaults() RAGConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = defaultChunkOverlap
	}
	if c.TopK <= 0 {
		c.TopK = defaultTopK
	}
	return c
}

// ErrEmptyCorpus is returned by Retrieve when no documents are indexed.
var ErrEmptyCorpus = errors.New("no documents indexed")

// Chunk is one indexed slice of a document.
type Chunk struct {
	ID     string
	Source string
	Text   string
	Vector []float32
}

// Match is a retrieved chunk and its similarity to the query.
type Match struct {
	Chunk
	Score float64
}

// DocumentInfo summarizes one indexed file.
type DocumentInfo struct {
	Name   string `json:"name"`
	Chunks int    `json:"chunks"`
}

// =================================================================================
// RAG Service
// =================================================================================

// RAGService owns the in-process vector index over the documents directory.
// The index is built lazily on first use and replaced wholesale by Rebuild.
type RAGService struct {
	config   RAGConfig
	embedder Embedder
	splitter textsplitter.RecursiveCharacter

	buildMu sync.Mutex // serializes builds

	mu     sync.RWMutex
	built  bool
	chunks []Chunk
	docs   []DocumentInfo
}

func NewRAGService(cfg RAGConfig, embedder Embedder) *RAGService {
	cfg = cfg.withDefaults()
	return &RAGService{
		config:   cfg,
		embedder: embedder,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		),
	}
}

// DocumentsDir is the directory the corpus is built from.
func (s *RAGService) DocumentsDir() string {
	return s.config.DocumentsDir
}

// TopK is the default number of chunks returned by Retrieve.
func (s *RAGService) TopK() int {
	return s.config.TopK
}

// Documents lists the files in the current index.
func (s *RAGService) Documents() []DocumentInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DocumentInfo, len(s.docs))
	copy(out, s.docs)
	return out
}

// Stats reports whether the index has been built and how many chunks it holds.
func (s *RAGService) Stats() (built bool, documents, chunks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built, len(s.docs), len(s.chunks)
}

// Rebuild re-reads the documents directory and replaces the index.
// It returns the number of chunks indexed.
func (s *RAGService) Rebuild(ctx context.Context) (int, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	return s.rebuildLocked(ctx)
}

func (s *RAGService) ensureBuilt(ctx context.Context) error {
	s.mu.RLock()
	built := s.built
	s.mu.RUnlock()
	if built {
		return nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	s.mu.RLock()
	built = s.built
	s.mu.RUnlock()
	if built {
		return nil
	}
	_, err := s.rebuildLocked(ctx)
	return err
}

func (s *RAGService) rebuildLocked(ctx context.Context) (int, error) {
	log.Printf("📚 Building document index from %s", s.config.DocumentsDir)
	docs, err := loadDocuments(ctx, s.config.DocumentsDir)
	if err != nil {
		return 0, err
	}

	var chunks []Chunk
	infos := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		pieces, err := s.splitter.SplitText(doc.Text)
		if err != nil {
			return 0, fmt.Errorf("failed to split %s: %w", doc.Name, err)
		}
		for _, piece := range pieces {
			chunks = append(chunks, Chunk{
				ID:     GenerateCacheKey(doc.Name + "::" + piece),
				Source: doc.Name,
				Text:   piece,
			})
		}
		infos = append(infos, DocumentInfo{Name: doc.Name, Chunks: len(pieces)})
	}

	if err := s.embedChunks(ctx, chunks); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.chunks = chunks
	s.docs = infos
	s.built = true
	s.mu.Unlock()

	log.Printf("✅ Indexed %d chunks from %d documents.", len(chunks), len(infos))
	return len(chunks), nil
}

// embedChunks fills in Vector for every chunk, a few batches at a time.
func (s *RAGService) embedChunks(ctx context.Context, chunks []Chunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embeddingWorkers)
	for start := 0; start < len(chunks); start += embeddingBatchSize {
		end := min(start+embeddingBatchSize, len(chunks))
		batch := chunks[start:end]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}
			vectors, err := s.embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed chunks %d-%d: %w", start, end, err)
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
			}
			for i := range batch {
				batch[i].Vector = vectors[i]
			}
			return nil
		})
	}
	return g.Wait()
}

// Retrieve returns the k chunks most similar to question, best first.
// It builds the index on first use and returns ErrEmptyCorpus when there is nothing to search.
func (s *RAGService) Retrieve(ctx context.Context, question string, k int) ([]Match, error) {
	if err := s.ensureBuilt(ctx); err != nil {
		return nil, fmt.Errorf("failed to build document index: %w", err)
	}
	if k <= 0 {
		k = s.config.TopK
	}

	s.mu.RLock()
	chunks := s.chunks
	s.mu.RUnlock()
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, errors.New("embedder returned no vector for question")
	}

	matches := make([]Match, len(chunks))
	for i, c := range chunks {
		matches[i] = Match{Chunk: c, Score: CosineSimilarity(vectors[0], c.Vector)}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
