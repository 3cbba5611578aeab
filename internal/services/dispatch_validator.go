package services

import (
	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
)

// DispatchValidator runs the dispatch checks on a candidate record without
// storing it. References are not resolved.
type DispatchValidator struct {
	Codec Codec[domain.Dispatch]
}

// Check returns the carrier the candidate would be assigned.
func (v *DispatchValidator) Check(raw catalog.Record) (domain.Assignment, error) {
	rec, problems := catalog.DispatchEntity.Normalize(raw)
	if problems != nil {
		return nil, domain.FieldErrors(problems)
	}

	d, err := v.Codec.Decode(rec)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d.Assignment()
}
