package resume

import (
	"encoding/json"
	"os"
	"time"
)

// ExcludedResumes is the content of an exclude file.
type ExcludedResumes struct {
	Items []*ExcludedResume
}

type ExcludedResume struct {
	Name       string
	Reason     string
	ExcludedAt time.Time
}

// ToExcluded converts ignored entries into exclude file records.
func ToExcluded(ignored []Ignored) *ExcludedResumes {
	excluded := &ExcludedResumes{}
	for _, item := range ignored {
		excluded.Items = append(excluded.Items, &ExcludedResume{
			Name:       item.Name,
			Reason:     item.Reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file yields an empty list.
func GetExcludedFromFile(path string) (*ExcludedResumes, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedResumes{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedResumes{}, nil
	}

	var excluded ExcludedResumes
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds records whose names are not in the list yet.
func (e *ExcludedResumes) Append(s *ExcludedResumes) {
	seen := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		seen[item.Name] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := seen[item.Name]; ok {
			continue
		}
		seen[item.Name] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedResumes) Names() []string {
	names := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		names = append(names, item.Name)
	}
	return names
}

// ToFile overwrites the file at path with the list.
func (e *ExcludedResumes) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
