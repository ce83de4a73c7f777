package store

import (
	"fmt"
	"strings"
)

type Question struct {
	ID        int64   `json:"id" yaml:"id"`
	TopicName string  `json:"topic_name" yaml:"topic_name"`
	Question  string  `json:"question" yaml:"question"`
	Answer    string  `json:"answer" yaml:"answer"`
	CreatedAt *string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"` // NULL on rows older than the column
}

type AddQuestionParams struct {
	TopicName string `json:"topic_name" yaml:"topic_name"`
	Question  string `json:"question" yaml:"question"`
	Answer    string `json:"answer" yaml:"answer"`
}

// ListOptions drives the browse screen: topic filter, free-text search and
// sort direction.
type ListOptions struct {
	Topic  string `json:"topic,omitempty" yaml:"topic,omitempty"`
	Query  string `json:"query,omitempty" yaml:"query,omitempty"`
	Oldest bool   `json:"oldest,omitempty" yaml:"oldest,omitempty"`
	Limit  int    `json:"limit,omitempty" yaml:"limit,omitempty"`
}

type TopicStat struct {
	Name  string `json:"name" yaml:"name"`
	Total int    `json:"total" yaml:"total"`
}

type Stats struct {
	TotalQuestions int      `json:"total_questions" yaml:"total_questions"`
	TotalTopics    int      `json:"total_topics" yaml:"total_topics"`
	CatalogTopics  int      `json:"catalog_topics" yaml:"catalog_topics"`
	HasProfile     bool     `json:"has_profile" yaml:"has_profile"`
	Topics         []string `json:"topics" yaml:"topics"`
}

const questionColumns = `id, COALESCE(topic_name, ''), COALESCE(question, ''), COALESCE(answer, ''), createdAt`

func (s *Store) CreateQuestionTable() error {
	_, err := s.exec(questionsSchema)
	return err
}

// AddCreatedAtColumn adds questions.createdAt on databases created before the
// column existed. It reports whether the column had to be added.
func (s *Store) AddCreatedAtColumn() (bool, error) {
	db, err := s.handle()
	if err != nil {
		return false, err
	}
	return addColumnIfNotExists(db, "questions", "createdAt", "TEXT")
}

func (s *Store) AddQuestion(p AddQuestionParams) (int64, error) {
	res, err := s.exec(
		`INSERT INTO questions (topic_name, question, answer, createdAt) VALUES (?, ?, ?, ?)`,
		p.TopicName, p.Question, p.Answer, s.stamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("add question: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) GetQuestion(id int64) (*Question, error) {
	qs, err := s.queryQuestions(`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("question #%d: %w", id, ErrNotFound)
	}
	return &qs[0], nil
}

func (s *Store) QuestionsByTopic(topic string) ([]Question, error) {
	return s.queryQuestions(
		`SELECT `+questionColumns+` FROM questions WHERE topic_name = ? ORDER BY createdAt DESC, id DESC`,
		topic,
	)
}

func (s *Store) AllQuestions() ([]Question, error) {
	return s.queryQuestions(`SELECT ` + questionColumns + ` FROM questions ORDER BY createdAt DESC, id DESC`)
}

// ListQuestions filters by exact topic and by a case-insensitive substring
// of the question, answer or topic.
func (s *Store) ListQuestions(opts ListOptions) ([]Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE 1=1`
	args := []any{}

	if opts.Topic != "" {
		query += " AND topic_name = ?"
		args = append(args, opts.Topic)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		q = strings.ToLower(q)
		query += ` AND (instr(lower(COALESCE(question, '')), ?) > 0
		             OR instr(lower(COALESCE(answer, '')), ?) > 0
		             OR instr(lower(COALESCE(topic_name, '')), ?) > 0)`
		args = append(args, q, q, q)
	}

	if opts.Oldest {
		query += " ORDER BY createdAt ASC, id ASC"
	} else {
		query += " ORDER BY createdAt DESC, id DESC"
	}
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	return s.queryQuestions(query, args...)
}

// UniqueTopics derives the browse topics from the question rows.
func (s *Store) UniqueTopics() ([]string, error) {
	rows, err := s.query(
		`SELECT DISTINCT topic_name FROM questions WHERE topic_name IS NOT NULL ORDER BY topic_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("unique topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		topics = append(topics, name)
	}
	return topics, rows.Err()
}

func (s *Store) TopicStats() ([]TopicStat, error) {
	rows, err := s.query(
		`SELECT topic_name, COUNT(*) FROM questions
		 WHERE topic_name IS NOT NULL
		 GROUP BY topic_name ORDER BY topic_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("topic stats: %w", err)
	}
	defer rows.Close()

	var stats []TopicStat
	for rows.Next() {
		var ts TopicStat
		if err := rows.Scan(&ts.Name, &ts.Total); err != nil {
			return nil, err
		}
		stats = append(stats, ts)
	}
	return stats, rows.Err()
}

// DeleteQuestion removes one question. A missing id returns ErrNotFound.
func (s *Store) DeleteQuestion(id int64) error {
	res, err := s.exec(`DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete question #%d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete question #%d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}

	row, err := s.queryRow(`SELECT COUNT(*) FROM questions`)
	if err != nil {
		return nil, err
	}
	if err := row.Scan(&stats.TotalQuestions); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	row, err = s.queryRow(`SELECT COUNT(*) FROM topics`)
	if err != nil {
		return nil, err
	}
	if err := row.Scan(&stats.CatalogTopics); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	topics, err := s.UniqueTopics()
	if err != nil {
		return nil, err
	}
	stats.Topics = topics
	stats.TotalTopics = len(topics)

	users, err := s.CountUsers()
	if err != nil {
		return nil, err
	}
	stats.HasProfile = users > 0

	return stats, nil
}

func (s *Store) queryQuestions(query string, args ...any) ([]Question, error) {
	rows, err := s.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.TopicName, &q.Question, &q.Answer, &q.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, q)
	}
	return results, rows.Err()
}
