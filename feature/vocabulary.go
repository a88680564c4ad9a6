package feature

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Family 是属性族：类型、主题、视角。
// 族的顺序决定了列在词表中的偏移。
type Family int

const (
	FamilyGenre Family = iota
	FamilyTheme
	FamilyPerspective

	familyCount = 3
)

func (f Family) String() string {
	switch f {
	case FamilyGenre:
		return "genre"
	case FamilyTheme:
		return "theme"
	case FamilyPerspective:
		return "perspective"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Families 按列偏移顺序返回全部属性族。
func Families() []Family {
	return []Family{FamilyGenre, FamilyTheme, FamilyPerspective}
}

// Term 是词表中的一个属性：ID 与可读名称。
type Term struct {
	ID   uint64 `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Vocabulary 是特征词表：三个属性族的有序 ID 列表拼接成的扁平列空间。
//
// 列号 = 族偏移 + 族内位置。词表构建后只读，可被并发请求共享。
type Vocabulary struct {
	terms   [familyCount][]Term
	offsets [familyCount]int
	columns [familyCount]map[uint64]int
	size    int
}

// NewVocabulary 由三个属性族的有序列表构建词表。同一族内 ID 重复时返回错误。
func NewVocabulary(genres, themes, perspectives []Term) (*Vocabulary, error) {
	v := &Vocabulary{}
	for i, terms := range [familyCount][]Term{genres, themes, perspectives} {
		fam := Family(i)
		v.offsets[i] = v.size
		v.terms[i] = append([]Term(nil), terms...)
		v.columns[i] = make(map[uint64]int, len(terms))
		for pos, t := range terms {
			if _, dup := v.columns[i][t.ID]; dup {
				return nil, fmt.Errorf("feature: duplicate %s id %d in vocabulary", fam, t.ID)
			}
			v.columns[i][t.ID] = v.size + pos
		}
		v.size += len(terms)
	}
	return v, nil
}

// MustVocabulary 与 NewVocabulary 相同，出错时 panic。用于静态词表。
func MustVocabulary(genres, themes, perspectives []Term) *Vocabulary {
	v, err := NewVocabulary(genres, themes, perspectives)
	if err != nil {
		panic(err)
	}
	return v
}

// Size 返回特征维度。
func (v *Vocabulary) Size() int {
	return v.size
}

// Len 返回某个属性族的条目数。
func (v *Vocabulary) Len(f Family) int {
	if !f.valid() {
		return 0
	}
	return len(v.terms[f])
}

// IDs 返回某个属性族的有序 ID 列表（副本）。
func (v *Vocabulary) IDs(f Family) []uint64 {
	if !f.valid() {
		return nil
	}
	out := make([]uint64, len(v.terms[f]))
	for i, t := range v.terms[f] {
		out[i] = t.ID
	}
	return out
}

// ColumnOf 返回属性 ID 的列号；ID 不在词表中时 ok 为 false。
func (v *Vocabulary) ColumnOf(f Family, id uint64) (int, bool) {
	if !f.valid() {
		return 0, false
	}
	col, ok := v.columns[f][id]
	return col, ok
}

// Term 返回列号对应的属性族与条目。
func (v *Vocabulary) Term(col int) (Family, Term, bool) {
	if col < 0 || col >= v.size {
		return 0, Term{}, false
	}
	for i := familyCount - 1; i >= 0; i-- {
		if col >= v.offsets[i] && col-v.offsets[i] < len(v.terms[i]) {
			return Family(i), v.terms[i][col-v.offsets[i]], true
		}
	}
	return 0, Term{}, false
}

// ColumnName 返回列的可读名称，例如 "genre:Role-playing (RPG)"。
func (v *Vocabulary) ColumnName(col int) string {
	fam, t, ok := v.Term(col)
	if !ok {
		return fmt.Sprintf("col_%d", col)
	}
	if t.Name == "" {
		return fmt.Sprintf("%s:%d", fam, t.ID)
	}
	return fam.String() + ":" + t.Name
}

func (f Family) valid() bool {
	return f >= 0 && f < familyCount
}

// VocabularyFile 是词表文件的 YAML 结构。
//
//	genres:
//	  - {id: 12, name: Role-playing (RPG)}
//	themes:
//	  - {id: 1, name: Action}
//	perspectives:
//	  - {id: 2, name: Third person}
type VocabularyFile struct {
	Genres       []Term `yaml:"genres"`
	Themes       []Term `yaml:"themes"`
	Perspectives []Term `yaml:"perspectives"`
}

// ParseVocabulary 从 YAML 内容解析词表。
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var f VocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("feature: parse vocabulary: %w", err)
	}
	return NewVocabulary(f.Genres, f.Themes, f.Perspectives)
}

// LoadVocabulary 从 YAML 文件加载词表。
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("feature: read vocabulary %s: %w", path, err)
	}
	return ParseVocabulary(data)
}
