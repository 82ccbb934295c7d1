package common

import (
	"context"
	"encoding/json"

	"github.com/betalky/backend/internal/entity"
	"github.com/betalky/backend/internal/model"
	"github.com/betalky/backend/internal/repository"
	"github.com/betalky/backend/pkg/pubsub"
	"github.com/betalky/backend/pkg/xcontext"
	"github.com/fatih/structs"
)

// Auditor writes audit logs next to the mutation they describe and forwards
// them to the audit topic once the mutation is committed.
type Auditor struct {
	auditLogRepo repository.AuditLogRepository
	publisher    pubsub.Publisher
}

func NewAuditor(auditLogRepo repository.AuditLogRepository, publisher pubsub.Publisher) *Auditor {
	return &Auditor{auditLogRepo: auditLogRepo, publisher: publisher}
}

// NewAuditLog builds an audit log. The details are read from the structs
// tags of the given value, which may be nil.
func NewAuditLog(
	action entity.AuditAction, guildID, actorID, targetID string, details any,
) *entity.AuditLog {
	log := &entity.AuditLog{
		GuildID:  guildID,
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Details:  entity.Map{},
	}

	if details != nil {
		log.Details = structs.Map(details)
	}

	return log
}

// Record stores the audit log with the database handle of ctx, so it belongs
// to the running transaction if any.
func (a *Auditor) Record(ctx context.Context, log *entity.AuditLog) error {
	if log.ID == 0 {
		log.ID = xcontext.SnowFlake(ctx).Generate().Int64()
	}

	return a.auditLogRepo.Create(ctx, log)
}

// Publish sends a committed audit log to the audit topic. Failures are only
// logged.
func (a *Auditor) Publish(ctx context.Context, log *entity.AuditLog) {
	if a.publisher == nil {
		return
	}

	b, err := json.Marshal(model.ConvertAuditLog(log))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal audit log: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.AuditTopic
	err = a.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(log.GuildID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish audit log %d: %v", log.ID, err)
	}
}
