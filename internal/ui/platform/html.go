package platform

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HTMLOption configures an HTMLDocument.
type HTMLOption func(*HTMLDocument)

// WithAnimationEngine enables Element.Animate, driven by clock.
func WithAnimationEngine(clock Clock) HTMLOption {
	return func(d *HTMLDocument) {
		if clock != nil {
			d.clock = clock
			d.animations = true
		}
	}
}

// HTMLDocument is a headless Document over a parsed HTML tree. It has no
// layout engine: bounding boxes are assigned by the host with SetRect.
type HTMLDocument struct {
	mu         sync.Mutex
	doc        *goquery.Document
	elems      map[*html.Node]*element
	rects      map[*html.Node]Rect
	listeners  map[*html.Node]map[string]map[int]func(Event)
	observers  map[int]attrObserver
	nextID     int
	clock      Clock
	animations bool
}

type attrObserver struct {
	node  *html.Node
	names map[string]bool
	fn    func(AttributeChange)
}

var _ Document = (*HTMLDocument)(nil)

// ParseHTML builds a document from r.
func ParseHTML(r io.Reader, opts ...HTMLOption) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := &HTMLDocument{
		doc:       doc,
		elems:     make(map[*html.Node]*element),
		rects:     make(map[*html.Node]Rect),
		listeners: make(map[*html.Node]map[string]map[int]func(Event)),
		observers: make(map[int]attrObserver),
		clock:     RealClock{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(s string, opts ...HTMLOption) (*HTMLDocument, error) {
	return ParseHTML(strings.NewReader(s), opts...)
}

// wrap returns the unique element for n; d.mu must be held.
func (d *HTMLDocument) wrap(n *html.Node) *element {
	if n == nil {
		return nil
	}
	if e, ok := d.elems[n]; ok {
		return e
	}
	e := &element{doc: d, node: n}
	d.elems[n] = e
	return e
}

func (d *HTMLDocument) first(sel *goquery.Selection) Element {
	if sel.Length() == 0 {
		return nil
	}
	return d.wrap(sel.Get(0))
}

func (d *HTMLDocument) all(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// Root implements Document.
func (d *HTMLDocument) Root() Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.first(d.doc.Find("html"))
}

// Head implements Document.
func (d *HTMLDocument) Head() Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.first(d.doc.Find("head"))
}

// Body implements Document.
func (d *HTMLDocument) Body() Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.first(d.doc.Find("body"))
}

// QueryAll implements Document.
func (d *HTMLDocument) QueryAll(selector string) []Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.all(d.doc.Find(selector))
}

// Query implements Document.
func (d *HTMLDocument) Query(selector string) Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.first(d.doc.Find(selector).First())
}

// SupportsAnimations implements Document.
func (d *HTMLDocument) SupportsAnimations() bool { return d.animations }

// HTML implements Document.
func (d *HTMLDocument) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Html()
}

// ObserveAttributes implements Document. A nil target observes every element.
func (d *HTMLDocument) ObserveAttributes(target Element, names []string, fn func(AttributeChange)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	o := attrObserver{fn: fn}
	if e, ok := target.(*element); ok && e != nil {
		o.node = e.node
	}
	if len(names) > 0 {
		o.names = make(map[string]bool, len(names))
		for _, n := range names {
			o.names[n] = true
		}
	}
	id := d.nextID
	d.nextID++
	d.observers[id] = o
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.observers, id)
	}
}

// SetRect assigns the bounding box returned by el.BoundingRect.
func (d *HTMLDocument) SetRect(el Element, r Rect) {
	e, ok := el.(*element)
	if !ok || e == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rects[e.node] = r
}

// Dispatch delivers ev to the listeners of el for ev.Type.
func (d *HTMLDocument) Dispatch(el Element, ev Event) {
	e, ok := el.(*element)
	if !ok || e == nil {
		return
	}
	d.mu.Lock()
	var fns []func(Event)
	ids := make([]int, 0)
	byID := d.listeners[e.node][ev.Type]
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, byID[id])
	}
	d.mu.Unlock()
	ev.Target = el
	for _, fn := range fns {
		fn(ev)
	}
}

// ListenerCount returns how many listeners el has for eventType.
func (d *HTMLDocument) ListenerCount(el Element, eventType string) int {
	e, ok := el.(*element)
	if !ok || e == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[e.node][eventType])
}

func (d *HTMLDocument) notify(ch AttributeChange, node *html.Node) {
	d.mu.Lock()
	var fns []func(AttributeChange)
	for _, o := range d.observers {
		if o.node != nil && o.node != node {
			continue
		}
		if o.names != nil && !o.names[ch.Name] {
			continue
		}
		fns = append(fns, o.fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

type element struct {
	doc  *HTMLDocument
	node *html.Node
}

var _ Element = (*element)(nil)

func (e *element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

func (e *element) Tag() string {
	return e.node.Data
}

func (e *element) ID() string {
	v, _ := e.Attr("id")
	return v
}

func (e *element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.sel().Attr(name)
}

func (e *element) SetAttr(name, value string) {
	e.doc.mu.Lock()
	e.sel().SetAttr(name, value)
	e.doc.mu.Unlock()
	e.doc.notify(AttributeChange{Target: e, Name: name, Value: value, Present: true}, e.node)
}

func (e *element) RemoveAttr(name string) {
	e.doc.mu.Lock()
	_, had := e.sel().Attr(name)
	e.sel().RemoveAttr(name)
	e.doc.mu.Unlock()
	if had {
		e.doc.notify(AttributeChange{Target: e, Name: name}, e.node)
	}
}

func (e *element) HasClass(class string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.sel().HasClass(class)
}

func (e *element) AddClass(classes ...string) {
	e.mutateClass(func(s *goquery.Selection) { s.AddClass(classes...) })
}

func (e *element) RemoveClass(classes ...string) {
	e.mutateClass(func(s *goquery.Selection) { s.RemoveClass(classes...) })
}

func (e *element) ToggleClass(class string) bool {
	var now bool
	e.mutateClass(func(s *goquery.Selection) {
		s.ToggleClass(class)
		now = s.HasClass(class)
	})
	return now
}

func (e *element) mutateClass(fn func(*goquery.Selection)) {
	e.doc.mu.Lock()
	s := e.sel()
	before, _ := s.Attr("class")
	fn(s)
	after, present := s.Attr("class")
	e.doc.mu.Unlock()
	if before != after {
		e.doc.notify(AttributeChange{Target: e, Name: "class", Value: after, Present: present}, e.node)
	}
}

func (e *element) Style(prop string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	raw, _ := e.sel().Attr("style")
	_, values := parseStyle(raw)
	return values[prop]
}

func (e *element) SetStyle(prop, value string) {
	e.doc.mu.Lock()
	e.setStyleLocked(prop, value)
	e.doc.mu.Unlock()
}

// setStyleLocked edits the style attribute; e.doc.mu must be held.
func (e *element) setStyleLocked(prop, value string) {
	s := e.sel()
	raw, _ := s.Attr("style")
	order, values := parseStyle(raw)
	if _, ok := values[prop]; !ok {
		order = append(order, prop)
	}
	values[prop] = value
	if value == "" {
		delete(values, prop)
	}
	s.SetAttr("style", formatStyle(order, values))
}

func (e *element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.sel().Text()
}

func (e *element) SetText(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.sel().SetText(text)
}

func (e *element) BoundingRect() Rect {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.rects[e.node]
}

func (e *element) QueryAll(selector string) []Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.all(e.sel().Find(selector))
}

func (e *element) Query(selector string) Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.doc.first(e.sel().Find(selector).First())
}

func (e *element) AppendHTML(h string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.sel().AppendHtml(h)
}

func (e *element) Remove() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

func (e *element) On(eventType string, fn func(Event)) func() {
	d := e.doc
	d.mu.Lock()
	defer d.mu.Unlock()
	byType, ok := d.listeners[e.node]
	if !ok {
		byType = make(map[string]map[int]func(Event))
		d.listeners[e.node] = byType
	}
	if byType[eventType] == nil {
		byType[eventType] = make(map[int]func(Event))
	}
	id := d.nextID
	d.nextID++
	byType[eventType][id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners[e.node][eventType], id)
	}
}

func (e *element) Animate(frames []Keyframe, opts AnimationOptions) (Animation, error) {
	if !e.doc.animations {
		return nil, ErrUnsupported
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("animate: no keyframes")
	}
	e.doc.mu.Lock()
	for prop, v := range frames[0] {
		e.setStyleLocked(prop, v)
	}
	e.doc.mu.Unlock()

	a := &animation{done: make(chan struct{})}
	last := frames[len(frames)-1]
	fill := opts.Fill == "forwards" || opts.Fill == "both"
	a.timer = e.doc.clock.AfterFunc(opts.Delay+opts.Duration, func() {
		if fill {
			e.doc.mu.Lock()
			for prop, v := range last {
				e.setStyleLocked(prop, v)
			}
			e.doc.mu.Unlock()
		}
		a.finish()
	})
	return a, nil
}

type animation struct {
	once  sync.Once
	done  chan struct{}
	timer Timer
}

func (a *animation) Done() <-chan struct{} { return a.done }

func (a *animation) Cancel() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.finish()
}

func (a *animation) finish() { a.once.Do(func() { close(a.done) }) }

func parseStyle(raw string) ([]string, map[string]string) {
	values := make(map[string]string)
	var order []string
	for _, decl := range strings.Split(raw, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		if _, seen := values[prop]; !seen {
			order = append(order, prop)
		}
		values[prop] = strings.TrimSpace(val)
	}
	return order, values
}

func formatStyle(order []string, values map[string]string) string {
	parts := make([]string, 0, len(order))
	for _, p := range order {
		if v, ok := values[p]; ok {
			parts = append(parts, p+": "+v)
		}
	}
	return strings.Join(parts, "; ")
}
