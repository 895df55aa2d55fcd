package alert

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/patrickpichler/koney/internal/types"
)

// ID derives the alert's external identifier: the uppercase hex MD5 of the
// alert's canonical JSON serialization. Struct field order and sorted map
// keys make the serialization, and therefore the ID, deterministic for
// identical field values. Downstream systems use it to deduplicate
// redeliveries of the same alert.
func ID(alert types.DeceptionAlert) (string, error) {
	canonical, err := json.Marshal(alert)
	if err != nil {
		return "", fmt.Errorf("serialize alert: %w", err)
	}

	sum := md5.Sum(canonical)
	return strings.ToUpper(fmt.Sprintf("%x", sum)), nil
}

// Description renders a short human-readable summary of the alert.
func Description(alert types.DeceptionAlert) string {
	if alert.TrapType == types.TrapTypeFilesystemHoneytoken {
		filePath := "?"
		if p, ok := alert.Metadata["file_path"].(string); ok && p != "" {
			filePath = p
		}

		namespacedPod := "?"
		if alert.Pod != nil && alert.Pod.Name != "" && alert.Pod.Namespace != "" {
			namespacedPod = alert.Pod.Namespace + "/" + alert.Pod.Name
		}

		return fmt.Sprintf("Access to honeytoken (%s) in pod (%s) detected", filePath, namespacedPod)
	}

	return "Koney alert triggered"
}
