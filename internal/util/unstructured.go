// Package util provides defensive accessors for unstructured Kubernetes
// objects. Missing keys and wrong types yield zero values, never errors.
package util

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// SafeNestedString returns the string at the given field path, or "" if
// missing or of the wrong type.
func SafeNestedString(obj map[string]interface{}, fields ...string) string {
	if obj == nil {
		return ""
	}
	val, found, err := unstructured.NestedString(obj, fields...)
	if err != nil || !found {
		return ""
	}
	return val
}

// SafeNestedMap returns the nested map at the given field path, or nil if
// missing.
func SafeNestedMap(obj map[string]interface{}, fields ...string) map[string]interface{} {
	if obj == nil {
		return nil
	}
	val, found, err := unstructured.NestedMap(obj, fields...)
	if err != nil || !found {
		return nil
	}
	return val
}
