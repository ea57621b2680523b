package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// KubeClient reads source code stored in ConfigMaps.
type KubeClient struct {
	clientset kubernetes.Interface
}

// NewKubeClient creates a new Kubernetes client. In-cluster config wins
// unless a kubeconfig context is requested explicitly.
func NewKubeClient(kubeconfig, kubeContext string) (*KubeClient, error) {
	var config *rest.Config
	var err error

	if kubeContext == "" {
		config, err = rest.InClusterConfig()
	}
	if config == nil {
		// Fall back to kubeconfig
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		if kubeconfig != "" {
			rules.ExplicitPath = kubeconfig
		}
		overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}
		config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	return &KubeClient{clientset: clientset}, nil
}

func NewKubeClientFromClientset(cs kubernetes.Interface) *KubeClient {
	return &KubeClient{clientset: cs}
}

// ConfigMapCode returns one key of a ConfigMap. ref is NAME[:KEY], with an
// optional configmap/ or cm/ prefix. KEY may be omitted when the ConfigMap
// holds a single entry.
func (c *KubeClient) ConfigMapCode(ctx context.Context, namespace, ref string) (string, error) {
	name, key, err := parseConfigMapRef(ref)
	if err != nil {
		return "", err
	}

	cm, err := c.clientset.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get configmap %s: %w", name, err)
	}

	entries := make(map[string]string, len(cm.Data)+len(cm.BinaryData))
	for k, v := range cm.Data {
		entries[k] = v
	}
	for k, v := range cm.BinaryData {
		entries[k] = string(v)
	}

	if key == "" {
		if len(entries) != 1 {
			return "", fmt.Errorf("configmap %s has %d keys (%s); specify one as %s:KEY", name, len(entries), strings.Join(sortedKeys(entries), ", "), name)
		}
		for _, v := range entries {
			return v, nil
		}
	}

	code, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("configmap %s has no key %q (available: %s)", name, key, strings.Join(sortedKeys(entries), ", "))
	}
	return code, nil
}

func parseConfigMapRef(ref string) (name, key string, err error) {
	ref = strings.TrimSpace(ref)
	if resType, remainder, ok := strings.Cut(ref, "/"); ok {
		switch resType {
		case "configmap", "cm":
			ref = remainder
		default:
			return "", "", fmt.Errorf("invalid configmap reference: %s (expected [configmap/]NAME[:KEY])", ref)
		}
	}
	name, key, _ = strings.Cut(ref, ":")
	if name == "" {
		return "", "", fmt.Errorf("invalid configmap reference: %q (expected [configmap/]NAME[:KEY])", ref)
	}
	return name, key, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
