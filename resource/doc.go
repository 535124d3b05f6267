// Package resource provides Component Model resource handle management.
//
// Resources are opaque handles representing host-side values that a WASM guest
// holds on to. The guest only ever sees a u32; the host maps it back to the Go
// value through a Table.
//
// # Resource Lifecycle
//
//	own<T>    - the guest holds the handle until it calls [resource-drop]
//	borrow<T> - temporary access for the duration of a method call
//	drop      - explicit destruction of the owned resource
//
// # Handle Table
//
//	table := resource.NewTable[*calc.Engine]()
//
//	h, err := table.Insert(calc.New())
//	e, ok := table.Get(h)
//	e, ok = table.Remove(h) // calls e.Drop() if e implements Dropper
//
// Handle 0 is reserved and never returned. Freed slots are reused LIFO, so a
// handle is only meaningful between its Insert and its Remove.
//
// # Borrows
//
// Borrow pins an entry for the duration of a call. Remove fails with
// ErrOutstandingBorrow while any borrow is active:
//
//	e, ok := table.Borrow(h)
//	defer table.ReturnBorrow(h)
//
// # Observers
//
//	table.Subscribe(resource.ObserverFunc(func(ev resource.Event) {
//	    log.Printf("%s %d", ev.Type, ev.Handle)
//	}))
//
// # Memory Management
//
// Resources are not garbage collected. The host must Remove a handle when the
// guest drops it, and Close the table when the owning instance goes away.
package resource
