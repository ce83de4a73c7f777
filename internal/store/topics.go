package store

import (
	"fmt"
	"strings"
)

type Topic struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// DefaultTopics seed the topic picker before the user has created any.
var DefaultTopics = []string{
	"General",
	"Mathematics",
	"Science",
	"History",
	"Technology",
	"Language",
	"Geography",
	"Art",
	"JavaScript",
	"React Native",
}

func (s *Store) CreateTopicTable() error {
	_, err := s.exec(topicsSchema)
	return err
}

// AddTopic inserts a catalog topic. Duplicate names return ErrTopicExists.
func (s *Store) AddTopic(name string) (int64, error) {
	name = strings.TrimSpace(name)
	res, err := s.exec(`INSERT INTO topics (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("add topic %q: %w", name, ErrTopicExists)
		}
		return 0, fmt.Errorf("add topic %q: %w", name, err)
	}
	return res.LastInsertId()
}

func (s *Store) AllTopics() ([]Topic, error) {
	rows, err := s.query(`SELECT id, COALESCE(name, '') FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("all topics: %w", err)
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// TopicChoices lists every name the topic picker offers: the defaults, then
// catalog topics, then names only found on question rows. Names are unique.
func (s *Store) TopicChoices() ([]string, error) {
	catalog, err := s.AllTopics()
	if err != nil {
		return nil, err
	}
	derived, err := s.UniqueTopics()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var choices []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		choices = append(choices, name)
	}
	for _, name := range DefaultTopics {
		add(name)
	}
	for _, t := range catalog {
		add(t.Name)
	}
	for _, name := range derived {
		add(name)
	}
	return choices, nil
}
