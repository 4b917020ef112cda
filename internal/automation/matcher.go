package automation

// EventData describes the status movement behind a trigger event. For
// task_created only NewStatus is meaningful.
type EventData struct {
	OldStatus string
	NewStatus string
}

// Match selects the active rules that fire for an event. Rules match
// independently; several rules may fire for the same event.
func Match(trigger TriggerType, ev EventData, rules []*Rule) []*Rule {
	var matched []*Rule
	for _, rule := range rules {
		if !rule.Active || rule.TriggerType != trigger {
			continue
		}
		if trigger == TriggerStatusChange && !matchStatusChange(rule.Trigger, ev) {
			continue
		}
		// task_created rules match unconditionally.
		matched = append(matched, rule)
	}
	return matched
}

func matchStatusChange(cfg TriggerConfig, ev EventData) bool {
	return matchAllowList(cfg.FromStatus, ev.OldStatus) && matchAllowList(cfg.ToStatus, ev.NewStatus)
}

// matchAllowList treats an empty list as a wildcard.
func matchAllowList(allow []string, status string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, s := range allow {
		if s == status {
			return true
		}
	}
	return false
}
