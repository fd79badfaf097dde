package jsonobj

// Object is a JSON object that remembers the order its keys were first set in.
type Object struct {
	keys   []string
	values map[string]any
}

// New creates an empty Object.
func New() *Object {
	return &Object{values: make(map[string]any)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[key]
	return ok
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Set stores value under key. A new key is appended; an existing key keeps its position.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Clone returns a shallow copy. Nested values are shared with o.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]any, len(o.values)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON encodes the object compactly with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	return Encode(o, 0)
}

// UnmarshalJSON decodes a JSON object, replacing any existing content.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return &TypeError{Found: TypeName(v)}
	}
	*o = *obj
	return nil
}
