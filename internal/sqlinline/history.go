package sqlinline

const QInsertGenerationEvent = `--sql 3f6c2a1e-9b4d-4c77-8a52-6e1d0b9f4a23
insert into generation_events(
  id,
  identity,
  prompt,
  width,
  height,
  outcome,
  latency_ms,
  created_at
) values (
  gen_random_uuid(),
  $1::text,
  nullif($2::text, ''),
  nullif($3::int, 0),
  nullif($4::int, 0),
  $5::text,
  $6::int,
  now()
);
`
