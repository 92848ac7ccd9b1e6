package registers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/utils"
)

// Candidate is one parsed upload entry.
type Candidate interface {
	GetCode() string
}

// Existing is a currently-valid stored row (the models satisfy this).
type Existing interface {
	GetCode() string
}

// Adapter binds the generic upload loop to one register's storage and
// enrichment rules.
//
// FindExisting receives at most config.LookupChunkSize codes per call; the
// engine handles chunking and merging. Prepare runs after the strategy
// check and may resolve references (parent locations, pricelists) into the
// entry; a Prepare error is recorded against the entry and skips it.
// ArchiveMissing receives dryRun so a dry sweep can count without mutating.
type Adapter[T Candidate, E Existing] interface {
	FindExisting(ctx context.Context, codes []string) ([]E, error)
	Prepare(ctx context.Context, entry *T) error
	Create(ctx context.Context, entry T, auditUserId int) error
	Update(ctx context.Context, existing E, entry T) error
	ArchiveMissing(ctx context.Context, keepCodes []string, auditUserId int, dryRun bool) (int64, error)
}

// UploadContext carries everything one upload run needs.
type UploadContext[T Candidate, E Existing] struct {
	Entries       []T
	ParsingErrors []string
	Adapter       Adapter[T, E]
	Strategy      string
	DryRun        bool
	// Label names the register in error messages ("Diagnosis", "Item", ...).
	Label string
	// LabelPlural names it in log lines ("diagnoses", "items", ...).
	LabelPlural string
}

// UploadRegister runs one reconciliation pass. Per-record failures are
// collected in the result; only infrastructure failures (lookups, the
// archival sweep) abort the run.
func UploadRegister[T Candidate, E Existing](ctx context.Context, auditUserId int, uc UploadContext[T, E]) (*UploadResult, error) {
	if !IsValidStrategy(uc.Strategy) {
		return nil, fmt.Errorf("unknown strategy '%s'", uc.Strategy)
	}

	logger := config.GetLogger()
	logger.WithFields(logrus.Fields{
		"register": uc.LabelPlural,
		"strategy": uc.Strategy,
		"dryRun":   uc.DryRun,
		"sent":     len(uc.Entries),
	}).Info("uploading register")

	result := &UploadResult{}
	result.Errors = append(result.Errors, uc.ParsingErrors...)

	codes := make([]string, 0, len(uc.Entries))
	for _, entry := range uc.Entries {
		codes = append(codes, entry.GetCode())
	}
	existing, err := resolveExisting(ctx, codes, uc.Adapter.FindExisting)
	if err != nil {
		config.LogError(logger, "registers", "UploadRegister", "resolve existing "+uc.LabelPlural, nil, err)
		return nil, err
	}

	for _, entry := range uc.Entries {
		result.Sent++
		code := entry.GetCode()
		row, found := existing[code]

		if found && uc.Strategy == StrategyInsert {
			result.addError(fmt.Sprintf("%s '%s' already exists", uc.Label, code))
			continue
		}
		if !found && uc.Strategy == StrategyUpdate {
			result.addError(fmt.Sprintf("%s '%s' does not exist", uc.Label, code))
			continue
		}

		if err := uc.Adapter.Prepare(ctx, &entry); err != nil {
			result.addError(err.Error())
			continue
		}

		if !found {
			if !uc.DryRun {
				if err := uc.Adapter.Create(ctx, entry, auditUserId); err != nil {
					config.LogError(logger, "registers", "UploadRegister", "create "+uc.LabelPlural, code, err)
					result.addError(fmt.Sprintf("Cannot create or update %s '%s'", strings.ToLower(uc.Label), code))
					continue
				}
			}
			result.Created++
		} else {
			if !uc.DryRun {
				if err := uc.Adapter.Update(ctx, row, entry); err != nil {
					config.LogError(logger, "registers", "UploadRegister", "update "+uc.LabelPlural, code, err)
					result.addError(fmt.Sprintf("Cannot create or update %s '%s'", strings.ToLower(uc.Label), code))
					continue
				}
			}
			result.Updated++
		}
	}

	if uc.Strategy == StrategyInsertUpdateDelete {
		deleted, err := uc.Adapter.ArchiveMissing(ctx, utils.UniqueSlice(codes), auditUserId, uc.DryRun)
		if err != nil {
			config.LogError(logger, "registers", "UploadRegister", "archive missing "+uc.LabelPlural, nil, err)
			return nil, err
		}
		result.Deleted += int(deleted)
	}

	logger.WithFields(logrus.Fields{
		"register": uc.LabelPlural,
		"sent":     result.Sent,
		"created":  result.Created,
		"updated":  result.Updated,
		"deleted":  result.Deleted,
		"errors":   len(result.Errors),
	}).Info("register upload finished")

	return result, nil
}
