package vector

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryStore is an in-memory vector store using brute-force cosine search.
// Suitable for tests and small corpora; entries can be persisted to a single
// binary file and reloaded across restarts.
type MemoryStore struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	documents  []string
	metadatas  []map[string]interface{}
	index      map[string]int
	mu         sync.RWMutex
}

// NewMemoryStore creates an in-memory store for vectors of the given dimension.
func NewMemoryStore(dimensions int) (*MemoryStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryStore{
		dimensions: dimensions,
		index:      make(map[string]int),
	}, nil
}

// Upsert stores entries by ID, replacing entries that already exist.
func (m *MemoryStore) Upsert(ctx context.Context, ids []string, vectors [][]float32, documents []string, metadatas []map[string]interface{}) error {
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("ids, vectors, documents, and metadatas length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		if pos, ok := m.index[id]; ok {
			m.vectors[pos] = vec
			m.documents[pos] = documents[i]
			m.metadatas[pos] = metadatas[i]
			continue
		}
		m.index[id] = len(m.ids)
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, vec)
		m.documents = append(m.documents, documents[i])
		m.metadatas = append(m.metadatas, metadatas[i])
	}
	return nil
}

// Query scans every stored vector and returns the k nearest by cosine
// distance, closest first.
func (m *MemoryStore) Query(ctx context.Context, query []float32, k int, filter map[string]interface{}) ([]*Hit, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.ids) == 0 {
		return nil, nil
	}
	hits := make([]*Hit, 0, len(m.ids))
	for i, vec := range m.vectors {
		if !matchesFilter(m.metadatas[i], filter) {
			continue
		}
		var dot float64
		for j := 0; j < m.dimensions; j++ {
			dot += float64(query[j] * vec[j])
		}
		hits = append(hits, &Hit{
			ID:       m.ids[i],
			Document: m.documents[i],
			Distance: 1 - dot,
			Metadata: m.metadatas[i],
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteWhere rebuilds the slices without the matching entries.
func (m *MemoryStore) DeleteWhere(ctx context.Context, filter map[string]interface{}) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	newIDs := make([]string, 0, len(m.ids))
	newVectors := make([][]float32, 0, len(m.vectors))
	newDocuments := make([]string, 0, len(m.documents))
	newMetadatas := make([]map[string]interface{}, 0, len(m.metadatas))
	removed := 0
	for i, id := range m.ids {
		if matchesFilter(m.metadatas[i], filter) {
			removed++
			continue
		}
		newIDs = append(newIDs, id)
		newVectors = append(newVectors, m.vectors[i])
		newDocuments = append(newDocuments, m.documents[i])
		newMetadatas = append(newMetadatas, m.metadatas[i])
	}
	m.ids = newIDs
	m.vectors = newVectors
	m.documents = newDocuments
	m.metadatas = newMetadatas
	m.index = make(map[string]int, len(m.ids))
	for i, id := range m.ids {
		m.index[id] = i
	}
	return removed, nil
}

// Count returns the number of stored entries.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids), nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}

// matchesFilter reports whether metadata matches every filter key. Values are
// compared through fmt.Sprint so numeric types decoded from JSON still match.
func matchesFilter(metadata, filter map[string]interface{}) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// Save persists the store to path. Directory is created if needed. Format:
// dimensions (4), n (4), then per entry: idLen+id, vector (dimensions*4),
// docLen+doc, metaLen+metadata JSON; all lengths little-endian uint32.
func (m *MemoryStore) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, id := range m.ids {
		if err := writeBlob(f, []byte(id)); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if _, err := f.Write(float32SliceToBytes(m.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
		if err := writeBlob(f, []byte(m.documents[i])); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		meta, err := json.Marshal(m.metadatas[i])
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if err := writeBlob(f, meta); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}
	return nil
}

// Load reads the store from path, replacing current contents. A missing file
// is not an error; the store is left unchanged.
func (m *MemoryStore) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, store expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = make([]string, 0, n)
	m.vectors = make([][]float32, 0, n)
	m.documents = make([]string, 0, n)
	m.metadatas = make([]map[string]interface{}, 0, n)
	m.index = make(map[string]int, n)
	vecBuf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		id, err := readBlob(f)
		if err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		doc, err := readBlob(f)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		metaBytes, err := readBlob(f)
		if err != nil {
			return fmt.Errorf("read metadata: %w", err)
		}
		var meta map[string]interface{}
		if err := json.Unmarshal(metaBytes, &meta); err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}
		m.index[string(id)] = len(m.ids)
		m.ids = append(m.ids, string(id))
		m.vectors = append(m.vectors, bytesToFloat32Slice(vecBuf))
		m.documents = append(m.documents, string(doc))
		m.metadatas = append(m.metadatas, meta)
	}
	return nil
}

func writeBlob(f *os.File, b []byte) error {
	if err := binary.Write(f, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := f.Write(b)
	return err
}

func readBlob(f *os.File) ([]byte, error) {
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, err
	}
	return b, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
