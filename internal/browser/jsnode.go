// internal/browser/jsnode.go
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// callOnNode runs fn with the node bound to this and returns the result by value.
// Must be called inside a chromedp action so ctx carries the target.
func callOnNode(ctx context.Context, node *cdp.Node, fn string) (*runtime.RemoteObject, error) {
	obj, err := dom.ResolveNode().WithNodeID(node.NodeID).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving node %d: %w", node.NodeID, err)
	}
	defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

	res, exc, err := runtime.CallFunctionOn(fn).
		WithObjectID(obj.ObjectID).
		WithReturnByValue(true).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("calling function on node %d: %w", node.NodeID, err)
	}
	if exc != nil {
		return nil, fmt.Errorf("page script threw: %w", exc)
	}
	return res, nil
}

// decodeResult unmarshals a by-value remote object into out.
func decodeResult(res *runtime.RemoteObject, out interface{}) error {
	if res == nil || len(res.Value) == 0 {
		return fmt.Errorf("script returned no value")
	}
	return json.Unmarshal([]byte(res.Value), out)
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
