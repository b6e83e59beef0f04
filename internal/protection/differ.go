package protection

// ComputeDiff compares a remote branch protection snapshot against a desired
// policy and reports one SettingDiff per deviating setting, in a fixed
// order. Settings the policy leaves nil are skipped entirely; required status
// checks compare as sets, so ordering differences never produce a diff.
func ComputeDiff(repositoryInfo RepoInfo, currentSettings BranchProtectionSettings, desiredSettings DesiredBranchProtection) SyncDiffResult {
	diffResult := SyncDiffResult{
		RepoInfo:         repositoryInfo,
		Branch:           currentSettings.Branch,
		Diffs:            []SettingDiff{},
		CurrentRulesetID: currentSettings.RulesetID,
	}

	if integerDiff := diffIntegerSetting(SettingRequiredReviews, currentSettings.RequiredReviews, desiredSettings.RequiredReviews); integerDiff != nil {
		diffResult.Diffs = append(diffResult.Diffs, *integerDiff)
	}
	if booleanDiff := diffBooleanSetting(SettingDismissStaleReviews, currentSettings.DismissStaleReviews, desiredSettings.DismissStaleReviews); booleanDiff != nil {
		diffResult.Diffs = append(diffResult.Diffs, *booleanDiff)
	}
	if booleanDiff := diffBooleanSetting(SettingRequireCodeOwnerReviews, currentSettings.RequireCodeOwnerReviews, desiredSettings.RequireCodeOwnerReviews); booleanDiff != nil {
		diffResult.Diffs = append(diffResult.Diffs, *booleanDiff)
	}
	if setDiff := diffStatusChecksSetting(currentSettings.RequiredStatusChecks, desiredSettings.RequiredStatusChecks); setDiff != nil {
		diffResult.Diffs = append(diffResult.Diffs, *setDiff)
	}
	if booleanDiff := diffBooleanSetting(SettingRequireBranchesUpToDate, currentSettings.RequireBranchesUpToDate, desiredSettings.RequireBranchesUpToDate); booleanDiff != nil {
		diffResult.Diffs = append(diffResult.Diffs, *booleanDiff)
	}
	if booleanDiff := diffBooleanSetting(SettingRequireSignedCommits, currentSettings.RequireSignedCommits, desiredSettings.RequireSignedCommits); booleanDiff != nil {
		diffResult.Diffs = append(diffResult.Diffs, *booleanDiff)
	}
	if booleanDiff := diffBooleanSetting(SettingEnforceAdmins, currentSettings.EnforceAdmins, desiredSettings.EnforceAdmins); booleanDiff != nil {
		diffResult.Diffs = append(diffResult.Diffs, *booleanDiff)
	}

	diffResult.HasChanges = len(diffResult.Diffs) > 0
	return diffResult
}

func diffIntegerSetting(settingName string, currentValue *int, desiredValue *int) *SettingDiff {
	if desiredValue == nil {
		return nil
	}
	if currentValue == nil {
		return &SettingDiff{Setting: settingName, Current: nil, Desired: *desiredValue, Action: DiffActionAdd}
	}
	if *currentValue == *desiredValue {
		return nil
	}
	return &SettingDiff{Setting: settingName, Current: *currentValue, Desired: *desiredValue, Action: DiffActionChange}
}

func diffBooleanSetting(settingName string, currentValue *bool, desiredValue *bool) *SettingDiff {
	if desiredValue == nil {
		return nil
	}
	if currentValue == nil {
		return &SettingDiff{Setting: settingName, Current: nil, Desired: *desiredValue, Action: DiffActionAdd}
	}
	if *currentValue == *desiredValue {
		return nil
	}
	return &SettingDiff{Setting: settingName, Current: *currentValue, Desired: *desiredValue, Action: DiffActionChange}
}

func diffStatusChecksSetting(currentChecks []string, desiredChecks []string) *SettingDiff {
	if desiredChecks == nil {
		return nil
	}
	if statusCheckSetsEqual(currentChecks, desiredChecks) {
		return nil
	}
	recordedCurrentChecks := currentChecks
	if recordedCurrentChecks == nil {
		recordedCurrentChecks = []string{}
	}
	diffAction := DiffActionChange
	if len(currentChecks) == 0 {
		diffAction = DiffActionAdd
	}
	return &SettingDiff{Setting: SettingRequireStatusChecks, Current: recordedCurrentChecks, Desired: desiredChecks, Action: diffAction}
}

func statusCheckSetsEqual(firstChecks []string, secondChecks []string) bool {
	firstSet := make(map[string]struct{}, len(firstChecks))
	for _, checkContext := range firstChecks {
		firstSet[checkContext] = struct{}{}
	}
	secondSet := make(map[string]struct{}, len(secondChecks))
	for _, checkContext := range secondChecks {
		secondSet[checkContext] = struct{}{}
	}
	if len(firstSet) != len(secondSet) {
		return false
	}
	for checkContext := range firstSet {
		if _, contextPresent := secondSet[checkContext]; !contextPresent {
			return false
		}
	}
	return true
}
