package iam

// Diff computes the three-way difference between a required permission list
// and an effective permission set. Extra is effective minus required, Missing
// is required minus effective, Present is their intersection. The required
// list is deduplicated first; an empty required list yields empty Missing and
// Present with Extra equal to the effective set.
//
// Diff is pure: it performs no I/O and never mutates its inputs.
func Diff(required []string, effective PermissionSet) DiffResult {
	want := NewPermissionSet(required...)

	result := DiffResult{
		Extra:   PermissionSet{},
		Missing: PermissionSet{},
		Present: PermissionSet{},
	}
	for action := range effective {
		if want.Contains(action) {
			result.Present.Add(action)
		} else {
			result.Extra.Add(action)
		}
	}
	for action := range want {
		if !effective.Contains(action) {
			result.Missing.Add(action)
		}
	}
	return result
}

// EmptyDiffResult returns a DiffResult with all three partitions empty. It is
// the value VerifyPermissions degrades to when orchestration fails.
func EmptyDiffResult() DiffResult {
	return DiffResult{
		Extra:   PermissionSet{},
		Missing: PermissionSet{},
		Present: PermissionSet{},
	}
}
