package dsgerr

import "github.com/dsgmesh/dsgcore/pkg/dsglog"

func logOverflow(region string, sub, max uint16) {
	dsglog.Default().WithFields(dsglog.Fields{
		"region":  region,
		"subcode": sub,
		"max":     max,
	}).Warnf("%s subcode %d exceeds max %d, clamping", region, sub, max)
}
