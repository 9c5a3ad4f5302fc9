package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/project-tktt/job-harvester/internal/domain"
)

// Elasticsearch appends records to an index via the bulk API. The document
// id is the record key, and create-only op types keep the index append-only.
type Elasticsearch struct {
	client    *elasticsearch.Client
	indexName string
}

// NewElasticsearch connects and verifies the cluster, then ensures the index.
func NewElasticsearch(addresses []string, indexName string) (*Elasticsearch, error) {
	if indexName == "" {
		indexName = "harvested-jobs"
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	s := &Elasticsearch{client: client, indexName: indexName}
	if err := s.ensureIndex(); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	return s, nil
}

func (s *Elasticsearch) ensureIndex() error {
	res, err := s.client.Indices.Exists([]string{s.indexName})
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"job_url": {"type": "keyword"},
				"job_id": {"type": "keyword"},
				"title": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"company": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"location": {"type": "text"},
				"location_city": {"type": "keyword"},
				"location_region": {"type": "keyword"},
				"location_country": {"type": "keyword"},
				"location_postal_code": {"type": "keyword"},
				"job_type": {"type": "keyword"},
				"job_category": {"type": "keyword"},
				"posted_at": {"type": "keyword"},
				"salary": {"type": "text"},
				"salary_min": {"type": "double"},
				"salary_max": {"type": "double"},
				"salary_currency": {"type": "keyword"},
				"salary_interval": {"type": "keyword"},
				"snippet": {"type": "text"},
				"reference_number": {"type": "keyword"},
				"employment_type": {"type": "keyword"},
				"valid_through": {"type": "keyword"},
				"description_html": {"type": "text", "index": false},
				"description_text": {"type": "text"},
				"requirements": {"type": "text"},
				"benefits": {"type": "text"},
				"tags": {"type": "keyword"},
				"seniority": {"type": "keyword"},
				"work_hours": {"type": "keyword"},
				"remote_type": {"type": "keyword"},
				"data_source": {"type": "keyword"},
				"scraped_at": {"type": "date"}
			}
		}
	}`

	res, err = s.client.Indices.Create(
		s.indexName,
		s.client.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}
	return nil
}

// Append bulk-creates the records. Documents that already exist are
// reported as conflicts by ES and ignored here, keeping the sink idempotent.
func (s *Elasticsearch) Append(ctx context.Context, records ...*domain.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, rec := range records {
		meta := map[string]any{
			"create": map[string]any{
				"_index": s.indexName,
				"_id":    rec.Key(),
			},
		}
		metaBytes, _ := json.Marshal(meta)
		buf.Write(metaBytes)
		buf.WriteByte('\n')

		docBytes, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.JobURL, err)
		}
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()), s.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Create struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
			} `json:"create"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}
	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			// 409 means the document already existed, which is fine for an
			// append-only sink.
			if item.Create.Status >= 400 && item.Create.Status != 409 {
				return fmt.Errorf("bulk item %s failed with status %d", item.Create.ID, item.Create.Status)
			}
		}
	}
	return nil
}
