package store

import (
	"github.com/sirupsen/logrus"

	"github.com/rentbook-dev/rentbook/internal/model"
)

// Fields names the decimal keys of a collection that are cleaned up before
// decoding. Amounts that are not numeric become 0; Optional values that are
// not numeric are dropped (left unset).
type Fields struct {
	Amounts  []string
	Optional []string
}

// DecodeList decodes recs into T. Bad amounts are degraded as described on
// Fields and records that still fail to decode are skipped; both are logged
// as warnings so that one bad row never fails a whole listing.
func DecodeList[T any](log logrus.FieldLogger, collection string, recs []Record, f Fields) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := Decode(f.clean(log, collection, rec), &v); err != nil {
			log.WithFields(logrus.Fields{
				"collection": collection,
				"record_id":  rec.ID(),
				"error":      err,
			}).Warn("Skipping undecodable record")
			continue
		}
		out = append(out, v)
	}
	return out
}

func (f Fields) clean(log logrus.FieldLogger, collection string, rec Record) Record {
	if len(f.Amounts) == 0 && len(f.Optional) == 0 {
		return rec
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	warn := func(key string, v any) {
		log.WithFields(logrus.Fields{
			"collection": collection,
			"record_id":  rec.ID(),
			"field":      key,
			"value":      v,
		}).Warn("Malformed amount")
	}

	for _, key := range f.Amounts {
		v, present := out[key]
		if !present {
			continue
		}
		d, ok := model.CoerceAmount(v)
		if !ok {
			warn(key, v)
		}
		out[key] = d.String()
	}
	for _, key := range f.Optional {
		v, present := out[key]
		if !present || v == nil {
			continue
		}
		d, ok := model.CoerceAmount(v)
		if !ok {
			warn(key, v)
			delete(out, key)
			continue
		}
		out[key] = d.String()
	}
	return out
}
