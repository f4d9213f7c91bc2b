package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func webhookJobHandlers() repository.ModelHandlers[*webhookJobRecord] {
	return repository.ModelHandlers[*webhookJobRecord]{
		NewRecord: func() *webhookJobRecord {
			return &webhookJobRecord{}
		},
		GetID: func(record *webhookJobRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *webhookJobRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *webhookJobRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func customerHandlers() repository.ModelHandlers[*customerRecord] {
	return repository.ModelHandlers[*customerRecord]{
		NewRecord: func() *customerRecord {
			return &customerRecord{}
		},
		GetID: func(record *customerRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *customerRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *customerRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func productHandlers() repository.ModelHandlers[*productRecord] {
	return repository.ModelHandlers[*productRecord]{
		NewRecord: func() *productRecord {
			return &productRecord{}
		},
		GetID: func(record *productRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *productRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *productRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func orderHandlers() repository.ModelHandlers[*orderRecord] {
	return repository.ModelHandlers[*orderRecord]{
		NewRecord: func() *orderRecord {
			return &orderRecord{}
		},
		GetID: func(record *orderRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *orderRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *orderRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func inventoryLevelHandlers() repository.ModelHandlers[*inventoryLevelRecord] {
	return repository.ModelHandlers[*inventoryLevelRecord]{
		NewRecord: func() *inventoryLevelRecord {
			return &inventoryLevelRecord{}
		},
		GetID: func(record *inventoryLevelRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *inventoryLevelRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *inventoryLevelRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func webhookLogHandlers() repository.ModelHandlers[*webhookLogRecord] {
	return repository.ModelHandlers[*webhookLogRecord]{
		NewRecord: func() *webhookLogRecord {
			return &webhookLogRecord{}
		},
		GetID: func(record *webhookLogRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *webhookLogRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *webhookLogRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
