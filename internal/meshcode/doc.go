// Package meshcode converts between latitude/longitude and the Japanese
// standard regional mesh code (JIS X 0410) at six nested levels.
//
// # Code Structure
//
// Levels are cumulative prefixes of a single digit string:
//
//	Level 1 (4 digits):  LLOO    lat index (lat*1.5), lon index (lon-100)
//	Level 2 (+2 digits): la lo   8×8 subdivision, digits 0–7
//	Level 3 (+2 digits): la lo   10×10 subdivision, digits 0–9
//	Level 4–6 (+1 each): q       2×2 quadrant, digits 1–4
//
// Quadrant digits map to (lat, lon) offsets within the parent cell:
//
//	3 (NW) | 4 (NE)
//	-------+-------
//	1 (SW) | 2 (SE)
//
// Cell sizes depend only on level:
//
//	Level  Height (lat)  Width (lon)   Approx.
//	1      2/3°          1°            80 km
//	2      1/12°         1/8°          10 km
//	3      1/120°        1/80°         1 km
//	4      1/240°        1/160°        500 m
//	5      1/480°        1/320°        250 m
//	6      1/960°        1/640°        125 m
//
// # Calling Conventions
//
// Each direction has a scalar entry point ([Encode], [Decode]) and a batch
// entry point ([EncodeBatch], [DecodeBatch]). Batch results are aligned with
// their input by index and equal to the scalar results element-wise. A batch
// either succeeds for every element or fails as a whole.
//
// # Validation
//
// The arithmetic itself places no bounds on its input, so both directions
// validate explicitly. Encode rejects coordinates whose level-1 indices fall
// outside 00–99 (lat outside [0, 66.67), lon outside [100, 200)). Decode
// rejects non-digit characters and digits outside the range of their level.
// A code whose final level is incomplete (length 5 or 7) decodes as its
// complete prefix: the dangling digit contributes no offset.
package meshcode
