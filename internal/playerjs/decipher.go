package playerjs

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// NTransformer solves the n-parameter challenge embedded in the player JS.
// Timedtext base URLs handed out by web clients carry an "n" query value
// that must be rewritten before the CDN will serve the track untrottled.
type NTransformer struct {
	jsBody []byte

	runtimeOnce sync.Once
	runtime     *runtimeTransformer
	runtimeErr  error
}

func NewNTransformer(jsBody string) *NTransformer {
	return &NTransformer{
		jsBody: []byte(jsBody),
	}
}

// Transform rewrites the 'n' parameter value. It first tries to isolate the
// challenge function and evaluate it standalone, then falls back to loading
// the full player script into a JS runtime.
func (d *NTransformer) Transform(n string) (string, error) {
	fn, err := d.getNFunction()
	if err == nil {
		decoded, evalErr := evalJavascript(fn, n)
		if evalErr == nil {
			return decoded, nil
		}
	}

	decoded, runtimeErr := d.transformWithRuntime(n)
	if runtimeErr == nil {
		return decoded, nil
	}
	if err != nil {
		return "", err
	}
	return "", runtimeErr
}

var nFunctionNameRegexps = []*regexp.Regexp{
	// Original kkdai pattern kept for compatibility with existing fixtures.
	regexp.MustCompile(`\.get\("n"\)\)&&\(b=([a-zA-Z0-9$]{0,3})\[(\d+)\](.+)\|\|([a-zA-Z0-9]{0,3})`),
	// Legacy pattern: b=XY[0](b)||ZZ
	regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]{1,})\[(\d+)\]\([a-zA-Z0-9$]{1,}\).+\|\|([a-zA-Z0-9$]{1,})`),
	// Newer pattern: b=XY(b)
	regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]{1,})\([a-zA-Z0-9$]{1,}\)`),
	// Some variants use optional chaining / looser spacing.
	regexp.MustCompile(`\.get\("n"\).*?&&.*?([a-zA-Z0-9$]{1,})\([a-zA-Z0-9$]{1,}\)`),
}

func (d *NTransformer) getNFunction() (string, error) {
	for _, re := range nFunctionNameRegexps {
		nameResult := re.FindSubmatch(d.jsBody)
		if len(nameResult) == 0 {
			continue
		}

		switch len(nameResult) {
		case 5:
			// Original pattern with explicit fallback symbol in group 4.
			if idx, err := strconv.Atoi(string(nameResult[2])); err == nil && idx == 0 {
				return d.extractFunction(string(nameResult[4]))
			}
			return d.extractFunction(string(nameResult[1]))
		case 4:
			// Legacy pattern with indexed function and fallback symbol.
			if idx, err := strconv.Atoi(string(nameResult[2])); err == nil && idx == 0 {
				return d.extractFunction(string(nameResult[3]))
			}
			return d.extractFunction(string(nameResult[1]))
		default:
			// Direct call pattern.
			return d.extractFunction(string(nameResult[1]))
		}
	}
	return "", errors.New("unable to extract n-function name")
}

func (d *NTransformer) extractFunction(name string) (string, error) {
	name = strings.TrimSpace(name)
	defPatterns := [][]byte{
		[]byte(name + "=function("),
		[]byte(name + " = function("),
		[]byte("function " + name + "("),
	}
	start := -1
	for _, def := range defPatterns {
		start = bytes.Index(d.jsBody, def)
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("unable to extract n-function body")
	}

	pos := start + bytes.IndexByte(d.jsBody[start:], '{') + 1
	var strChar byte
	for brackets := 1; brackets > 0; pos++ {
		if pos >= len(d.jsBody) {
			return "", fmt.Errorf("unterminated n-function body")
		}
		b := d.jsBody[pos]
		switch b {
		case '{':
			if strChar == 0 {
				brackets++
			}
		case '}':
			if strChar == 0 {
				brackets--
			}
		case '`', '"', '\'':
			if pos > 1 && d.jsBody[pos-1] == '\\' && d.jsBody[pos-2] != '\\' {
				continue
			}
			if strChar == 0 {
				strChar = b
			} else if strChar == b {
				strChar = 0
			}
		}
	}
	return string(d.jsBody[start:pos]), nil
}

func evalJavascript(jsFunction, arg string) (string, error) {
	const fnName = "ytsNsigFunction"
	vm := goja.New()
	if _, err := vm.RunString(fnName + "=" + jsFunction); err != nil {
		return "", err
	}
	var output func(string) string
	if err := vm.ExportTo(vm.Get(fnName), &output); err != nil {
		return "", err
	}
	return output(arg), nil
}

type runtimeTransformer struct {
	mu       sync.Mutex
	vm       *goja.Runtime
	nURLFunc goja.Callable
}

var (
	nURLRuntimeNameRegexp = regexp.MustCompile(`([A-Za-z0-9_$]+)=function\(b\)\{try\{const\s+[A-Za-z0-9_$]+=\(new\s+g\.Mj\(b,!0\)\)\.get\("n"\)`)
	nPathExtractRegexp    = regexp.MustCompile(`/n/([^/?]+)`)
)

func (d *NTransformer) transformWithRuntime(n string) (string, error) {
	rt, err := d.loadRuntimeTransformer()
	if err != nil {
		return "", err
	}

	escaped := url.PathEscape(n)
	inputURL := "https://www.youtube.com/videoplayback/n/" + escaped + "/x?n=" + url.QueryEscape(n)

	rt.mu.Lock()
	out, err := rt.nURLFunc(goja.Undefined(), rt.vm.ToValue(inputURL))
	rt.mu.Unlock()
	if err != nil {
		return "", err
	}

	m := nPathExtractRegexp.FindStringSubmatch(out.String())
	if len(m) < 2 {
		return "", errors.New("runtime n transform output missing /n/ segment")
	}
	decoded, decodeErr := url.PathUnescape(m[1])
	if decodeErr != nil {
		return "", decodeErr
	}
	return decoded, nil
}

func (d *NTransformer) loadRuntimeTransformer() (*runtimeTransformer, error) {
	d.runtimeOnce.Do(func() {
		d.runtime, d.runtimeErr = d.buildRuntimeTransformer()
	})
	return d.runtime, d.runtimeErr
}

func (d *NTransformer) buildRuntimeTransformer() (*runtimeTransformer, error) {
	jsBody := string(d.jsBody)

	m := nURLRuntimeNameRegexp.FindStringSubmatch(jsBody)
	if len(m) < 2 {
		return nil, errors.New("runtime n transform export point not found")
	}
	inject := "g.__yts_nurl=" + m[1] + ";"

	const marker = "})(_yt_player);"
	markerPos := strings.LastIndex(jsBody, marker)
	if markerPos < 0 {
		return nil, errors.New("unable to inject runtime n transform export")
	}
	jsBody = jsBody[:markerPos] + inject + jsBody[markerPos:]

	vm := goja.New()
	if _, err := vm.RunString(runtimePreludeJS); err != nil {
		return nil, err
	}
	if _, err := vm.RunString(jsBody); err != nil {
		return nil, err
	}

	root := vm.Get("_yt_player")
	if root == nil || goja.IsUndefined(root) || goja.IsNull(root) {
		return nil, errors.New("runtime n transform missing _yt_player root")
	}
	rootObj := root.ToObject(vm)

	rt := &runtimeTransformer{vm: vm}
	if nURLVal := rootObj.Get("__yts_nurl"); nURLVal != nil && !goja.IsUndefined(nURLVal) && !goja.IsNull(nURLVal) {
		if fn, ok := goja.AssertFunction(nURLVal); ok {
			rt.nURLFunc = fn
		}
	}
	if rt.nURLFunc == nil {
		return nil, errors.New("runtime n transform export is not callable")
	}
	return rt, nil
}

const runtimePreludeJS = `
var globalThis = this;
if (typeof window === 'undefined') { var window = this; }
if (typeof document === 'undefined') { var document = {}; }
if (typeof navigator === 'undefined') { var navigator = {}; }
if (typeof self === 'undefined') { var self = this; }
if (typeof location === 'undefined') {
	var location = {
		href: 'https://www.youtube.com/watch?v=yts',
		protocol: 'https:',
		host: 'www.youtube.com',
		hostname: 'www.youtube.com',
		pathname: '/watch',
		search: '?v=yts',
		hash: '',
		origin: 'https://www.youtube.com'
	};
}
if (!window.location) { window.location = location; }
if (!window.navigator) { window.navigator = navigator; }
if (!window.document) { window.document = document; }
if (!window.top) { window.top = window; }
if (!window.parent) { window.parent = window; }
if (!window.performance) {
	window.performance = { now: function(){ return 0; }, mark: function(){}, measure: function(){}, clearMarks: function(){} };
}
if (!window.localStorage) {
	window.localStorage = { getItem: function(){ return null; }, setItem: function(){}, removeItem: function(){} };
}
if (!window.sessionStorage) {
	window.sessionStorage = { getItem: function(){ return null; }, setItem: function(){}, removeItem: function(){} };
}
if (!window.setTimeout) { window.setTimeout = function(fn){ return 0; }; }
if (!window.clearTimeout) { window.clearTimeout = function(){}; }
if (!window.setInterval) { window.setInterval = function(fn){ return 0; }; }
if (!window.clearInterval) { window.clearInterval = function(){}; }
if (!window.addEventListener) { window.addEventListener = function(){}; }
if (!window.removeEventListener) { window.removeEventListener = function(){}; }
if (!window.matchMedia) {
	window.matchMedia = function(){ return { matches: false, addListener: function(){}, removeListener: function(){} }; };
}
if (!window.crypto) {
	window.crypto = {
		getRandomValues: function(arr){ for (var i = 0; i < arr.length; i++) { arr[i] = 0; } return arr; }
	};
}
if (typeof XMLHttpRequest === 'undefined') {
	var XMLHttpRequest = function(){};
	XMLHttpRequest.prototype = {
		open: function(){},
		send: function(){},
		setRequestHeader: function(){},
		addEventListener: function(){},
		removeEventListener: function(){},
		getResponseHeader: function(){ return ''; },
		abort: function(){},
		readyState: 4,
		status: 200,
		responseText: '',
		response: null
	};
}
if (!window.XMLHttpRequest) { window.XMLHttpRequest = XMLHttpRequest; }
if (typeof Intl === 'undefined') { var Intl = {}; }
if (!Intl.DateTimeFormat) {
	Intl.DateTimeFormat = function(){ return { resolvedOptions: function(){ return { timeZone: 'UTC' }; } }; };
}
if (!Intl.NumberFormat) {
	Intl.NumberFormat = function(){ return { format: function(v){ return String(v); } }; };
	Intl.NumberFormat.supportedLocalesOf = function(){ return []; };
}
if (!Intl.PluralRules) {
	Intl.PluralRules = function(){ return { select: function(){ return 'other'; } }; };
	Intl.PluralRules.supportedLocalesOf = function(){ return []; };
}
if (!Intl.RelativeTimeFormat) {
	Intl.RelativeTimeFormat = function(){ return { format: function(v, u){ return String(v) + ' ' + String(u); } }; };
	Intl.RelativeTimeFormat.supportedLocalesOf = function(){ return []; };
}
if (!document.createElement) {
	document.createElement = function(){
		return {
			style: {},
			getContext: function(){ return null; },
			canPlayType: function(){ return ''; },
			setAttribute: function(){},
			removeAttribute: function(){},
			appendChild: function(){},
			addEventListener: function(){},
			removeEventListener: function(){}
		};
	};
}
if (!document.querySelectorAll) { document.querySelectorAll = function(){ return []; }; }
if (!document.getElementsByTagName) { document.getElementsByTagName = function(){ return []; }; }
if (!document.addEventListener) { document.addEventListener = function(){}; }
if (!document.removeEventListener) { document.removeEventListener = function(){}; }
if (!document.location) { document.location = window.location; }
if (!document.documentElement) { document.documentElement = { style: {} }; }
`
