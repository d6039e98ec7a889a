package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Save(ctx context.Context, record *SummaryRecord) error
	Get(ctx context.Context, userID, id snowflake.ID) (*SummaryRecord, error)
	List(ctx context.Context, userID snowflake.ID, req ListRequest) (ListResponse, error)
}
