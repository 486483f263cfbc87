package analysis

// Steam content descriptor ids.
const (
	DescriptorSomeNudity           = 1
	DescriptorViolenceGore         = 2
	DescriptorAdultOnlySexual      = 3
	DescriptorFrequentNuditySexual = 4
	DescriptorGeneralMature        = 5
)

var adultDescriptors = map[int]struct{}{
	DescriptorAdultOnlySexual:      {},
	DescriptorFrequentNuditySexual: {},
}

// IsAdultContent reports whether any descriptor is in the adult/explicit set.
func IsAdultContent(descriptors []int) bool {
	for _, d := range descriptors {
		if _, ok := adultDescriptors[d]; ok {
			return true
		}
	}
	return false
}
