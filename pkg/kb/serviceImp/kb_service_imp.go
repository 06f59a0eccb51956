package serviceImp

import (
	"math"
	"sort"
	"strings"

	"sprout/entities"
	"sprout/pkg/kb/embedder"
	"sprout/pkg/kb/repository"
)

type Svc struct {
	r   repository.KBRepository
	emb *embedder.Client
}

func New(r repository.KBRepository, e *embedder.Client) *Svc { return &Svc{r: r, emb: e} }

func chunkText(text string, maxRunes int) []string {
	if maxRunes <= 0 {
		maxRunes = 1000
	}
	parts := []string{}
	var cur strings.Builder
	count := 0
	for _, r := range text {
		cur.WriteRune(r)
		count++
		if count >= maxRunes && r == '\n' {
			parts = append(parts, cur.String())
			cur.Reset()
			count = 0
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// UpsertDocument stores a care-guide article and its chunks. Embedding
// failures degrade gracefully: chunks are kept without vectors and search
// falls back to keywords.
func (s *Svc) UpsertDocument(title, tags, text, sourceURL string) (*entities.GuideDocument, int, error) {
	d := &entities.GuideDocument{Title: title, Tags: tags, SourceURL: sourceURL}
	if err := s.r.CreateDoc(d); err != nil {
		return nil, 0, err
	}

	chs := chunkText(text, 1000)
	if len(chs) == 0 {
		return d, 0, nil
	}

	var embs [][]float32
	if s.emb.Enabled() {
		if got, err := s.emb.Embed(chs); err == nil {
			embs = got
		}
	}

	rows := make([]entities.GuideChunk, len(chs))
	for i := range chs {
		var embBytes []byte
		if embs != nil && i < len(embs) {
			embBytes = embedder.FloatsToBytes(embs[i])
		}
		rows[i] = entities.GuideChunk{DocID: d.DocID, Ord: i, Text: chs[i], Embedding: embBytes}
	}
	if err := s.r.BulkInsertChunks(rows); err != nil {
		return nil, 0, err
	}
	return d, len(rows), nil
}

// Search ranks chunks by embedding cosine when vectors are available,
// otherwise by keyword hits.
func (s *Svc) Search(query string, k int) ([]entities.GuideChunk, error) {
	q := strings.TrimSpace(query)
	if q == "" || k <= 0 {
		return nil, nil
	}

	var qvec []float32
	if s.emb.Enabled() {
		if vec, err := s.emb.Embed([]string{q}); err == nil && len(vec) > 0 {
			qvec = vec[0]
		}
	}

	chunks, err := s.r.AllChunks()
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	type scored struct {
		ch entities.GuideChunk
		sc float64
	}
	list := make([]scored, 0, len(chunks))

	if len(qvec) > 0 {
		for _, ch := range chunks {
			cv := embedder.BytesToFloats(ch.Embedding)
			if len(cv) != len(qvec) || len(cv) == 0 {
				continue
			}
			if sc := cosine(qvec, cv); sc > 0 {
				list = append(list, scored{ch: ch, sc: sc})
			}
		}
	} else {
		terms := strings.Fields(strings.ToLower(q))
		for _, ch := range chunks {
			low := strings.ToLower(ch.Text)
			sc := 0.0
			for _, t := range terms {
				if strings.Contains(low, t) {
					sc++
				}
			}
			if sc > 0 {
				list = append(list, scored{ch: ch, sc: sc})
			}
		}
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].sc > list[j].sc })
	if k > len(list) {
		k = len(list)
	}
	out := make([]entities.GuideChunk, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, list[i].ch)
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += float64(a[i] * b[i])
		na += float64(a[i] * a[i])
		nb += float64(b[i] * b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (s *Svc) DocsMeta(ids []uint) (map[uint]entities.GuideDocument, error) {
	return s.r.DocsByIDs(ids)
}
