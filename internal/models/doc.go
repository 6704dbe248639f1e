// package models defines the data model for the SpotiBuds terminal client.
//
// The central type is [Slide], the tagged union of feed content kinds
// returned by the backend's feed endpoint. Slides carry a stable
// [Slide.Fingerprint] used for cross-page dedup and the seen-set.
package models
